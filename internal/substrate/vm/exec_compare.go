package vm

func isCompareOp(op Op) bool {
	switch op {
	case OpEq, OpLt, OpGt, OpLte, OpGte, OpNe:
		return true
	default:
		return false
	}
}

// valuesEqual is structural equality over the Value sum type, used by Eq/Ne.
func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ValNil:
		return true
	case ValBool:
		return a.Bool == b.Bool
	case ValInt:
		return a.Int == b.Int
	case ValFloat:
		return a.Float == b.Float
	case ValString, ValSymbol:
		return a.Index == b.Index
	case ValPair, ValClosure, ValGcPtr:
		return a.Ptr == b.Ptr
	case ValActorID:
		return a.ActorID == b.ActorID
	case ValCapability:
		return a.Cap.Equal(b.Cap)
	default:
		return false
	}
}

func numericValue(v Value) (float64, bool) {
	switch v.Kind {
	case ValInt:
		return float64(v.Int), true
	case ValFloat:
		return v.Float, true
	default:
		return 0, false
	}
}

// execCompare handles Eq/Ne (structural, any kind) and Lt/Gt/Lte/Gte
// (numeric, Int or Float operands), each pushing a Bool result.
func (vm *VmState) execCompare(ins Instruction) (StepOutcome, error) {
	rhs, err := vm.pop()
	if err != nil {
		return StepOutcome{}, err
	}
	lhs, err := vm.pop()
	if err != nil {
		return StepOutcome{}, err
	}

	switch ins.Op {
	case OpEq:
		vm.push(BoolValue(valuesEqual(lhs, rhs)))
	case OpNe:
		vm.push(BoolValue(!valuesEqual(lhs, rhs)))
	default:
		a, aok := numericValue(lhs)
		b, bok := numericValue(rhs)
		if !aok || !bok {
			return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "numeric", "lhs": lhs.TypeName(), "rhs": rhs.TypeName()})
		}
		var result bool
		switch ins.Op {
		case OpLt:
			result = a < b
		case OpGt:
			result = a > b
		case OpLte:
			result = a <= b
		case OpGte:
			result = a >= b
		}
		vm.push(BoolValue(result))
	}
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
