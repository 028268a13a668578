// Package capability implements the capability and tier system: the closed
// Capability enum, the per-actor capability set, the tier->granted-set
// policy, and the audit trail for request/grant/revoke decisions.
package capability

import (
	"encoding/binary"
	"fmt"
)

// Kind discriminates the closed Capability enum.
type Kind uint8

const (
	MetaSelfModify Kind = iota
	MetaGrant
	MacroHygienic
	MacroUnsafe
	ComptimeEval
	IoReadSensor
	IoWriteActuator
	IoNetwork
	IoPersist
	SysCreateActor
	SysTerminateActor
	SysClock
	ResourceExtraMemory
	ResourceExtraTime
)

func (k Kind) String() string {
	names := [...]string{
		"MetaSelfModify", "MetaGrant", "MacroHygienic", "MacroUnsafe", "ComptimeEval",
		"IoReadSensor", "IoWriteActuator", "IoNetwork", "IoPersist",
		"SysCreateActor", "SysTerminateActor", "SysClock",
		"ResourceExtraMemory", "ResourceExtraTime",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Capability is an unforgeable token authorizing a specific privileged
// operation. Resource-variant capabilities carry a u64 payload and are
// considered equal only by full structural equality (kind and payload),
// so distinct quotas are distinct capabilities.
type Capability struct {
	Kind    Kind
	Payload uint64 // valid for ResourceExtraMemory / ResourceExtraTime
}

// Equal is full structural equality: kind and (for resource variants)
// payload must match.
func (c Capability) Equal(other Capability) bool {
	if c.Kind != other.Kind {
		return false
	}
	if c.Kind == ResourceExtraMemory || c.Kind == ResourceExtraTime {
		return c.Payload == other.Payload
	}
	return true
}

// EncodeCapability serializes a capability as a discriminant byte plus any
// payload.
func EncodeCapability(c Capability) []byte {
	if c.Kind == ResourceExtraMemory || c.Kind == ResourceExtraTime {
		buf := make([]byte, 9)
		buf[0] = byte(c.Kind)
		binary.LittleEndian.PutUint64(buf[1:], c.Payload)
		return buf
	}
	return []byte{byte(c.Kind)}
}

// DecodeCapability reads a capability from the front of data and returns
// it with the number of bytes consumed.
func DecodeCapability(data []byte) (Capability, int, error) {
	if len(data) == 0 {
		return Capability{}, 0, fmt.Errorf("capability: DecodeCapability: empty input")
	}
	kind := Kind(data[0])
	if kind == ResourceExtraMemory || kind == ResourceExtraTime {
		if len(data) < 9 {
			return Capability{}, 0, fmt.Errorf("capability: DecodeCapability: truncated payload")
		}
		return Capability{Kind: kind, Payload: binary.LittleEndian.Uint64(data[1:9])}, 9, nil
	}
	if kind > SysClock {
		return Capability{}, 0, fmt.Errorf("capability: DecodeCapability: unknown kind %d", data[0])
	}
	return Capability{Kind: kind}, 1, nil
}
