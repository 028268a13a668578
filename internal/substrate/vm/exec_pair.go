package vm

import "github.com/latticevm/substrate/internal/substrate/memory"

func isPairOp(op Op) bool {
	switch op {
	case OpCons, OpCar, OpCdr:
		return true
	default:
		return false
	}
}

func (vm *VmState) execPair(ins Instruction) (StepOutcome, error) {
	switch ins.Op {
	case OpCons:
		cdr, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		car, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		ptr, allocErr := vm.Arena.Allocate(8, memory.TagPair)
		if allocErr != nil {
			return StepOutcome{}, newError(ErrHeapExhausted, vm.context(), map[string]any{"cause": allocErr.Error()})
		}
		data := vm.Arena.Data(ptr)
		memory.WriteU32(data, 0, uint32(vm.valueToToken(car)))
		memory.WriteU32(data, 4, uint32(vm.valueToToken(cdr)))
		vm.push(PairValue(ptr))
	case OpCar, OpCdr:
		pairVal, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		if pairVal.Kind != ValPair {
			return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "Pair", "got": pairVal.TypeName()})
		}
		if !vm.Arena.InBounds(pairVal.Ptr) {
			return StepOutcome{}, newError(ErrInvalidHeapPtr, vm.context(), map[string]any{"ptr": uint32(pairVal.Ptr)})
		}
		data := vm.Arena.Data(pairVal.Ptr)
		offset := uint32(0)
		if ins.Op == OpCdr {
			offset = 4
		}
		v, tokErr := vm.tokenToValue(memory.Token(memory.ReadU32(data, offset)))
		if tokErr != nil {
			return StepOutcome{}, tokErr
		}
		vm.push(v)
	}
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
