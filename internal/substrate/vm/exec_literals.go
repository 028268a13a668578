package vm

func isLiteralOrStackOp(op Op) bool {
	switch op {
	case OpNil, OpBool, OpInt, OpFloat, OpSymbol, OpLoadString, OpDup, OpPop, OpSwap:
		return true
	default:
		return false
	}
}

// execLiteralOrStack handles literal pushes and the stack-shuffle ops
// (Dup, Pop, Swap).
func (vm *VmState) execLiteralOrStack(ins Instruction) (StepOutcome, error) {
	switch ins.Op {
	case OpNil:
		vm.push(Nil())
	case OpBool:
		vm.push(BoolValue(ins.BoolOperand))
	case OpInt:
		vm.push(IntValue(ins.IntOperand))
	case OpFloat:
		vm.push(FloatValue(ins.FloatOperand))
	case OpSymbol:
		vm.push(SymbolValue(ins.U32A))
	case OpLoadString:
		vm.push(StringValue(ins.U32A))
	case OpDup:
		if err := vm.requireStack(1, "Dup"); err != nil {
			return StepOutcome{}, err
		}
		vm.push(vm.Stack[len(vm.Stack)-1])
	case OpPop:
		if _, err := vm.pop(); err != nil {
			return StepOutcome{}, err
		}
	case OpSwap:
		if err := vm.requireStack(2, "Swap"); err != nil {
			return StepOutcome{}, err
		}
		n := len(vm.Stack)
		vm.Stack[n-1], vm.Stack[n-2] = vm.Stack[n-2], vm.Stack[n-1]
	}
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
