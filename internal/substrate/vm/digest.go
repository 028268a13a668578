package vm

import (
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// ProgramDigest is a 5-element program-attestation fingerprint, letting a
// scheduler or surface compiler cheaply tell whether two actors were
// loaded from byte-identical programs without re-hashing with a
// general-purpose algorithm. Repurposed from a STARK trace digest to an
// ExecutionResult attestation fingerprint, following vm_state.go's
// computeProgramDigest.
type ProgramDigest [5]field.Element

// ComputeProgramDigest hashes an instruction stream and its constant pool
// using the same Poseidon call shape as the trace digest: each
// instruction's opcode and its first numeric operand are absorbed as
// field elements.
func ComputeProgramDigest(instructions []Instruction, constants []Value) ProgramDigest {
	elements := make([]field.Element, 0, len(instructions)*2+len(constants))
	for _, ins := range instructions {
		elements = append(elements, field.New(uint64(ins.Op)))
		elements = append(elements, field.New(instructionOperandBits(ins)))
	}
	for _, c := range constants {
		elements = append(elements, field.New(constantOperandBits(c)))
	}

	digestElement := hash.PoseidonHash(elements)
	return ProgramDigest{digestElement, field.Zero, field.Zero, field.Zero, field.Zero}
}

// instructionOperandBits folds an instruction's operand fields into a
// single field-friendly value; exact recoverability isn't required since
// this is a fingerprint, not an encoding.
func instructionOperandBits(ins Instruction) uint64 {
	switch {
	case ins.IntOperand != 0:
		return uint64(ins.IntOperand)
	case ins.U32A != 0 || ins.U32B != 0:
		return uint64(ins.U32A)<<32 | uint64(ins.U32B)
	case ins.U16 != 0 || ins.U8 != 0:
		return uint64(ins.U16)<<8 | uint64(ins.U8)
	case ins.I16 != 0:
		return uint64(uint16(ins.I16))
	case ins.BoolOperand:
		return 1
	default:
		return 0
	}
}

func constantOperandBits(v Value) uint64 {
	switch v.Kind {
	case ValInt:
		return uint64(v.Int)
	case ValBool:
		if v.Bool {
			return 1
		}
		return 0
	case ValString, ValSymbol:
		return uint64(v.Index)
	case ValActorID:
		return uint64(v.ActorID)
	default:
		return uint64(v.Kind)
	}
}
