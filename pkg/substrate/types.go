package substrate

import (
	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/vm"
)

// Op is a bytecode instruction tag.
type Op = vm.Op

// Instruction is a single bytecode instruction.
type Instruction = vm.Instruction

// Value is the VM's tagged value representation.
type Value = vm.Value

// Capability is an unforgeable token authorizing a privileged operation.
type Capability = capability.Capability

// CapabilityKind discriminates the closed Capability enum.
type CapabilityKind = capability.Kind

// TrustTier is an actor's admission tier, determining its default
// capability grant.
type TrustTier = capability.TrustTier

// Program is a complete, loadable unit of bytecode: instructions, the
// constant pool, and the interned string table it indexes into.
type Program struct {
	Instructions []Instruction
	Constants    []Value
	Strings      []string
}

// ResourceLimits bounds an actor's admission into the scheduler.
type ResourceLimits = vm.ResourceLimits

// DefaultResourceLimits returns the default admission ceiling.
func DefaultResourceLimits() ResourceLimits {
	return vm.DefaultResourceLimits()
}

// Value constructors, re-exported for callers building a Program without
// reaching into internal/substrate/vm directly.
func NilValue() Value              { return vm.Nil() }
func BoolValue(b bool) Value       { return vm.BoolValue(b) }
func IntValue(i int64) Value       { return vm.IntValue(i) }
func FloatValue(f float64) Value   { return vm.FloatValue(f) }
func ActorIDValue(id uint32) Value { return vm.ActorIDValue(id) }

