package vm

func isControlOp(op Op) bool {
	switch op {
	case OpJmp, OpJmpIfFalse, OpCall, OpTailCall, OpRet:
		return true
	default:
		return false
	}
}

// execControl handles relative jumps and the call/tailcall/return frame
// discipline.
func (vm *VmState) execControl(ins Instruction) (StepOutcome, error) {
	switch ins.Op {
	case OpJmp:
		vm.IP = vm.IP + 1 + int(ins.I16)
		return StepOutcome{Kind: StepContinue}, nil
	case OpJmpIfFalse:
		cond, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		next := vm.IP + 1
		if cond.Kind == ValBool && !cond.Bool {
			next += int(ins.I16)
		}
		vm.IP = next
		return StepOutcome{Kind: StepContinue}, nil
	case OpCall:
		return vm.execCall(ins)
	case OpTailCall:
		return vm.execTailCall(ins)
	case OpRet:
		return vm.execRet()
	}
	panic("vm: execControl: unreachable")
}

func (vm *VmState) currentDepth() int {
	if len(vm.CallStack) == 0 {
		return 0
	}
	return vm.CallStack[len(vm.CallStack)-1].RecursionDepth
}

func (vm *VmState) execCall(ins Instruction) (StepOutcome, error) {
	argc := int(ins.U16)
	if err := vm.requireStack(argc+1, "Call"); err != nil {
		return StepOutcome{}, err
	}
	callee, err := vm.pop()
	if err != nil {
		return StepOutcome{}, err
	}
	if callee.Kind != ValClosure {
		return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "Closure", "got": callee.TypeName()})
	}

	newDepth := vm.currentDepth() + 1
	if newDepth > vm.MaxRecursionDepth {
		return StepOutcome{}, newError(ErrRecursionLimitExceeded, vm.context(), map[string]any{"limit": vm.MaxRecursionDepth, "depth": newDepth})
	}

	captures, capErr := vm.closureCaptures(callee.Ptr)
	if capErr != nil {
		return StepOutcome{}, capErr
	}
	body, readErr := ReadCodeBlock(vm.Arena, vm.closureBodyPtr(callee.Ptr))
	if readErr != nil {
		return StepOutcome{}, newError(ErrHeapCorruption, vm.context(), map[string]any{"cause": readErr.Error()})
	}

	stackBase := len(vm.Stack) - argc
	locals := append([]Value(nil), vm.Stack[stackBase:]...)

	frame := CallFrame{
		ReturnIP:          vm.IP + 1,
		StackBase:         stackBase,
		SavedInstructions: vm.Instructions,
		RecursionDepth:    newDepth,
		Locals:            locals,
		ClosedOver:        captures,
		Tail:              false,
		FrameID:           vm.nextFrameID,
	}
	vm.nextFrameID++
	vm.CallStack = append(vm.CallStack, frame)
	vm.Instructions = body
	vm.IP = 0
	return StepOutcome{Kind: StepContinue}, nil
}

func (vm *VmState) execTailCall(ins Instruction) (StepOutcome, error) {
	argc := int(ins.U16)
	if err := vm.requireStack(argc+1, "TailCall"); err != nil {
		return StepOutcome{}, err
	}
	if len(vm.CallStack) == 0 {
		return StepOutcome{}, newError(ErrStackUnderflow, vm.context(), map[string]any{"operation": "TailCall", "reason": "no enclosing frame"})
	}
	callee, err := vm.pop()
	if err != nil {
		return StepOutcome{}, err
	}
	if callee.Kind != ValClosure {
		return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "Closure", "got": callee.TypeName()})
	}

	captures, capErr := vm.closureCaptures(callee.Ptr)
	if capErr != nil {
		return StepOutcome{}, capErr
	}
	body, readErr := ReadCodeBlock(vm.Arena, vm.closureBodyPtr(callee.Ptr))
	if readErr != nil {
		return StepOutcome{}, newError(ErrHeapCorruption, vm.context(), map[string]any{"cause": readErr.Error()})
	}

	top := &vm.CallStack[len(vm.CallStack)-1]
	args := append([]Value(nil), vm.Stack[len(vm.Stack)-argc:]...)
	vm.Stack = vm.Stack[:top.StackBase]
	vm.Stack = append(vm.Stack, args...)
	top.Locals = args
	top.ClosedOver = captures
	top.Tail = true

	vm.Instructions = body
	vm.IP = 0
	return StepOutcome{Kind: StepContinue}, nil
}

func (vm *VmState) execRet() (StepOutcome, error) {
	if len(vm.CallStack) == 0 {
		retVal := Nil()
		if len(vm.Stack) > 0 {
			v, err := vm.pop()
			if err != nil {
				return StepOutcome{}, err
			}
			retVal = v
		}
		return StepOutcome{Kind: StepFinished, FinishedValue: retVal}, nil
	}

	frame := vm.CallStack[len(vm.CallStack)-1]
	retVal := Nil()
	if len(vm.Stack) > frame.StackBase {
		v, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		retVal = v
	}
	vm.Stack = vm.Stack[:frame.StackBase]
	vm.push(retVal)
	vm.Instructions = frame.SavedInstructions
	vm.IP = frame.ReturnIP
	vm.CallStack = vm.CallStack[:len(vm.CallStack)-1]
	return StepOutcome{Kind: StepContinue}, nil
}
