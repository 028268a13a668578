package vm

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/latticevm/substrate/internal/substrate/capability"
	"github.com/latticevm/substrate/internal/substrate/memory"
)

// Program is a bytecode unit: its instruction stream plus an
// index-addressable constant pool, both immutable for the actor's
// lifetime once loaded.
type Program struct {
	Instructions []Instruction
	Constants    []Value
}

// EncodeInstruction serializes ins per the instruction wire table.
func EncodeInstruction(ins Instruction) []byte {
	buf := []byte{byte(ins.Op)}
	switch ins.Op {
	case OpBool:
		b := byte(0)
		if ins.BoolOperand {
			b = 1
		}
		buf = append(buf, b)
	case OpInt:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(ins.IntOperand))
		buf = append(buf, tmp[:]...)
	case OpFloat:
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(ins.FloatOperand))
		buf = append(buf, tmp[:]...)
	case OpSymbol, OpLoadString, OpHasCap:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], ins.U32A)
		buf = append(buf, tmp[:]...)
	case OpGetLocal, OpSetLocal:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], ins.U16)
		buf = append(buf, tmp[:]...)
	case OpCall, OpTailCall:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], ins.U16)
		buf = append(buf, tmp[:]...)
	case OpJmp, OpJmpIfFalse, OpSetErrorHandler:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(ins.I16))
		buf = append(buf, tmp[:]...)
	case OpMakeClosure, OpRequestCap, OpGrantCap, OpRevokeCap:
		var tmp [8]byte
		binary.LittleEndian.PutUint32(tmp[0:4], ins.U32A)
		binary.LittleEndian.PutUint32(tmp[4:8], ins.U32B)
		buf = append(buf, tmp[:]...)
	case OpHostCall:
		var tmp [7]byte
		binary.LittleEndian.PutUint32(tmp[0:4], ins.U32A)
		binary.LittleEndian.PutUint16(tmp[4:6], ins.U16)
		tmp[6] = ins.U8
		buf = append(buf, tmp[:]...)
	}
	return buf
}

// DecodeInstruction reads one instruction from the front of data and
// returns it with the number of bytes consumed.
func DecodeInstruction(data []byte) (Instruction, int, error) {
	if len(data) == 0 {
		return Instruction{}, 0, fmt.Errorf("vm: DecodeInstruction: empty input")
	}
	op := Op(data[0])
	rest := data[1:]
	need := func(n int) error {
		if len(rest) < n {
			return fmt.Errorf("vm: DecodeInstruction: truncated operand for %s", op)
		}
		return nil
	}
	switch op {
	case OpBool:
		if err := need(1); err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, BoolOperand: rest[0] != 0}, 2, nil
	case OpInt:
		if err := need(8); err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, IntOperand: int64(binary.LittleEndian.Uint64(rest[:8]))}, 9, nil
	case OpFloat:
		if err := need(8); err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, FloatOperand: math.Float64frombits(binary.LittleEndian.Uint64(rest[:8]))}, 9, nil
	case OpSymbol, OpLoadString, OpHasCap:
		if err := need(4); err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, U32A: binary.LittleEndian.Uint32(rest[:4])}, 5, nil
	case OpGetLocal, OpSetLocal, OpCall, OpTailCall:
		if err := need(2); err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, U16: binary.LittleEndian.Uint16(rest[:2])}, 3, nil
	case OpJmp, OpJmpIfFalse, OpSetErrorHandler:
		if err := need(2); err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{Op: op, I16: int16(binary.LittleEndian.Uint16(rest[:2]))}, 3, nil
	case OpMakeClosure, OpRequestCap, OpGrantCap, OpRevokeCap:
		if err := need(8); err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{
			Op:   op,
			U32A: binary.LittleEndian.Uint32(rest[0:4]),
			U32B: binary.LittleEndian.Uint32(rest[4:8]),
		}, 9, nil
	case OpHostCall:
		if err := need(7); err != nil {
			return Instruction{}, 0, err
		}
		return Instruction{
			Op:   op,
			U32A: binary.LittleEndian.Uint32(rest[0:4]),
			U16:  binary.LittleEndian.Uint16(rest[4:6]),
			U8:   rest[6],
		}, 8, nil
	default:
		if op > OpCleanupSandbox {
			return Instruction{}, 0, fmt.Errorf("vm: DecodeInstruction: unknown opcode %d", op)
		}
		return Instruction{Op: op}, 1, nil
	}
}

// valueTag identifies a Value's on-wire encoding, per the
// "{tag:u8, payload}" constant-pool serialization.
const (
	valueTagNil uint8 = iota
	valueTagBool
	valueTagInt
	valueTagFloat
	valueTagString
	valueTagSymbol
	valueTagPair
	valueTagClosure
	valueTagActorID
	valueTagCapability
	valueTagGcPtr
)

// EncodeValue serializes a constant-pool Value as {tag, payload}.
func EncodeValue(v Value) []byte {
	switch v.Kind {
	case ValNil:
		return []byte{valueTagNil}
	case ValBool:
		b := byte(0)
		if v.Bool {
			b = 1
		}
		return []byte{valueTagBool, b}
	case ValInt:
		buf := make([]byte, 9)
		buf[0] = valueTagInt
		binary.LittleEndian.PutUint64(buf[1:], uint64(v.Int))
		return buf
	case ValFloat:
		buf := make([]byte, 9)
		buf[0] = valueTagFloat
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(v.Float))
		return buf
	case ValString:
		buf := make([]byte, 5)
		buf[0] = valueTagString
		binary.LittleEndian.PutUint32(buf[1:], v.Index)
		return buf
	case ValSymbol:
		buf := make([]byte, 5)
		buf[0] = valueTagSymbol
		binary.LittleEndian.PutUint32(buf[1:], v.Index)
		return buf
	case ValPair, ValClosure, ValGcPtr:
		tag := map[ValueKind]uint8{ValPair: valueTagPair, ValClosure: valueTagClosure, ValGcPtr: valueTagGcPtr}[v.Kind]
		buf := make([]byte, 5)
		buf[0] = tag
		binary.LittleEndian.PutUint32(buf[1:], uint32(v.Ptr))
		return buf
	case ValActorID:
		buf := make([]byte, 5)
		buf[0] = valueTagActorID
		binary.LittleEndian.PutUint32(buf[1:], v.ActorID)
		return buf
	case ValCapability:
		buf := []byte{valueTagCapability}
		return append(buf, capability.EncodeCapability(v.Cap)...)
	default:
		panic(fmt.Sprintf("vm: EncodeValue: unknown value kind %v", v.Kind))
	}
}

// DecodeValue reads one Value from the front of data and returns it with
// the number of bytes consumed.
func DecodeValue(data []byte) (Value, int, error) {
	if len(data) == 0 {
		return Value{}, 0, fmt.Errorf("vm: DecodeValue: empty input")
	}
	tag := data[0]
	rest := data[1:]
	need := func(n int) error {
		if len(rest) < n {
			return fmt.Errorf("vm: DecodeValue: truncated payload for tag %d", tag)
		}
		return nil
	}
	switch tag {
	case valueTagNil:
		return Nil(), 1, nil
	case valueTagBool:
		if err := need(1); err != nil {
			return Value{}, 0, err
		}
		return BoolValue(rest[0] != 0), 2, nil
	case valueTagInt:
		if err := need(8); err != nil {
			return Value{}, 0, err
		}
		return IntValue(int64(binary.LittleEndian.Uint64(rest[:8]))), 9, nil
	case valueTagFloat:
		if err := need(8); err != nil {
			return Value{}, 0, err
		}
		return FloatValue(math.Float64frombits(binary.LittleEndian.Uint64(rest[:8]))), 9, nil
	case valueTagString:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return StringValue(binary.LittleEndian.Uint32(rest[:4])), 5, nil
	case valueTagSymbol:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return SymbolValue(binary.LittleEndian.Uint32(rest[:4])), 5, nil
	case valueTagPair:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return PairValue(memory.HeapPtr(binary.LittleEndian.Uint32(rest[:4]))), 5, nil
	case valueTagClosure:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return ClosureValue(memory.HeapPtr(binary.LittleEndian.Uint32(rest[:4]))), 5, nil
	case valueTagGcPtr:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return GcPtrValue(memory.HeapPtr(binary.LittleEndian.Uint32(rest[:4]))), 5, nil
	case valueTagActorID:
		if err := need(4); err != nil {
			return Value{}, 0, err
		}
		return ActorIDValue(binary.LittleEndian.Uint32(rest[:4])), 5, nil
	case valueTagCapability:
		cap, n, err := capability.DecodeCapability(rest)
		if err != nil {
			return Value{}, 0, err
		}
		return CapabilityValue(cap), 1 + n, nil
	default:
		return Value{}, 0, fmt.Errorf("vm: DecodeValue: unknown tag %d", tag)
	}
}
