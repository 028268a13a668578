package vm

import (
	"fmt"

	"github.com/latticevm/substrate/internal/substrate/memory"
)

// WriteCodeBlock serializes instructions into a TagCode arena object and
// returns its HeapPtr, for use as a closure's body_ptr. Surface compilers
// call this when materialising a lambda.
func WriteCodeBlock(arena *memory.Arena, instructions []Instruction) (memory.HeapPtr, error) {
	var encoded []byte
	for _, ins := range instructions {
		encoded = append(encoded, EncodeInstruction(ins)...)
	}
	ptr, err := arena.Allocate(uint32(len(encoded)), memory.TagCode)
	if err != nil {
		return 0, err
	}
	copy(arena.Data(ptr), encoded)
	return ptr, nil
}

// ReadCodeBlock decodes the instruction vector stored at ptr by WriteCodeBlock.
func ReadCodeBlock(arena *memory.Arena, ptr memory.HeapPtr) ([]Instruction, error) {
	data := arena.Data(ptr)
	var out []Instruction
	for len(data) > 0 {
		ins, n, err := DecodeInstruction(data)
		if err != nil {
			return nil, fmt.Errorf("vm: ReadCodeBlock: %w", err)
		}
		out = append(out, ins)
		data = data[n:]
	}
	return out, nil
}

// execMakeClosure allocates a closure object: a body pointer at offset 0
// followed by capture_count captured-value slots, values popped from the
// stack in push order.
func (vm *VmState) execMakeClosure(ins Instruction) (StepOutcome, error) {
	bodyPtr := memory.HeapPtr(ins.U32A)
	captureCount := int(ins.U32B)

	if err := vm.requireStack(captureCount, "MakeClosure"); err != nil {
		return StepOutcome{}, err
	}
	captures := make([]Value, captureCount)
	for i := captureCount - 1; i >= 0; i-- {
		v, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		captures[i] = v
	}

	ptr, allocErr := vm.Arena.Allocate(uint32(4+4*captureCount), memory.TagClosure)
	if allocErr != nil {
		return StepOutcome{}, newError(ErrHeapExhausted, vm.context(), map[string]any{"cause": allocErr.Error()})
	}
	data := vm.Arena.Data(ptr)
	memory.WriteU32(data, 0, uint32(memory.PtrToken(bodyPtr)))
	for i, v := range captures {
		memory.WriteU32(data, uint32(4+4*i), uint32(vm.valueToToken(v)))
	}

	vm.push(ClosureValue(ptr))
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}

// closureCaptures reads the captured values from a closure's data region,
// decoding each slot's Token back into a Value.
func (vm *VmState) closureCaptures(ptr memory.HeapPtr) ([]Value, *VmError) {
	data := vm.Arena.Data(ptr)
	count := (len(data) - 4) / 4
	captures := make([]Value, count)
	for i := 0; i < count; i++ {
		tok := memory.Token(memory.ReadU32(data, uint32(4+4*i)))
		v, err := vm.tokenToValue(tok)
		if err != nil {
			return nil, err
		}
		captures[i] = v
	}
	return captures, nil
}

func (vm *VmState) closureBodyPtr(ptr memory.HeapPtr) memory.HeapPtr {
	data := vm.Arena.Data(ptr)
	return memory.Token(memory.ReadU32(data, 0)).Ptr()
}
