package vm

func isStringOp(op Op) bool {
	switch op {
	case OpStrLen, OpStrConcat, OpStrIndex:
		return true
	default:
		return false
	}
}

func (vm *VmState) stringAt(idx uint32) (string, *VmError) {
	if idx >= uint32(len(vm.Strings)) {
		return "", newError(ErrSerializationError, vm.context(), map[string]any{"reason": "string index out of range", "index": idx})
	}
	return vm.Strings[idx], nil
}

func (vm *VmState) internString(s string) uint32 {
	idx := uint32(len(vm.Strings))
	vm.Strings = append(vm.Strings, s)
	return idx
}

// execString handles the string ops. StrIndex yields the byte at the
// given offset as an Int; StrLen/StrConcat operate on byte length, since
// the wire format carries strings as raw byte sequences.
func (vm *VmState) execString(ins Instruction) (StepOutcome, error) {
	switch ins.Op {
	case OpStrLen:
		v, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		if v.Kind != ValString {
			return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "String", "got": v.TypeName()})
		}
		s, serr := vm.stringAt(v.Index)
		if serr != nil {
			return StepOutcome{}, serr
		}
		vm.push(IntValue(int64(len(s))))
	case OpStrConcat:
		rhs, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		lhs, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		if lhs.Kind != ValString || rhs.Kind != ValString {
			return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "String", "lhs": lhs.TypeName(), "rhs": rhs.TypeName()})
		}
		a, serr := vm.stringAt(lhs.Index)
		if serr != nil {
			return StepOutcome{}, serr
		}
		b, serr := vm.stringAt(rhs.Index)
		if serr != nil {
			return StepOutcome{}, serr
		}
		vm.push(StringValue(vm.internString(a + b)))
	case OpStrIndex:
		idxVal, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		strVal, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		if strVal.Kind != ValString || idxVal.Kind != ValInt {
			return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "String,Int", "got": strVal.TypeName() + "," + idxVal.TypeName()})
		}
		s, serr := vm.stringAt(strVal.Index)
		if serr != nil {
			return StepOutcome{}, serr
		}
		if idxVal.Int < 0 || idxVal.Int >= int64(len(s)) {
			return StepOutcome{}, newError(ErrSerializationError, vm.context(), map[string]any{"reason": "StrIndex out of range", "index": idxVal.Int, "length": len(s)})
		}
		vm.push(IntValue(int64(s[idxVal.Int])))
	}
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
