package vm

func isLocalsOp(op Op) bool {
	return op == OpGetLocal || op == OpSetLocal
}

// execLocals handles GetLocal/SetLocal, both indexed relative to the
// current frame's stack_base.
func (vm *VmState) execLocals(ins Instruction) (StepOutcome, error) {
	base := vm.frameStackBase()
	slot := base + int(ins.U16)

	switch ins.Op {
	case OpGetLocal:
		if slot < 0 || slot >= len(vm.Stack) {
			return StepOutcome{}, newError(ErrStackUnderflow, vm.context(), map[string]any{"operation": "GetLocal", "required": slot + 1, "available": len(vm.Stack)})
		}
		vm.push(vm.Stack[slot])
	case OpSetLocal:
		v, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		if slot < 0 || slot >= len(vm.Stack)+1 {
			return StepOutcome{}, newError(ErrStackUnderflow, vm.context(), map[string]any{"operation": "SetLocal", "required": slot + 1, "available": len(vm.Stack)})
		}
		if slot == len(vm.Stack) {
			vm.Stack = append(vm.Stack, v)
		} else {
			vm.Stack[slot] = v
		}
	}
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
