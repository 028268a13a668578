package vm

import "math"

func isArithOp(op Op) bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpFAdd, OpFSub, OpFMul, OpFDiv:
		return true
	default:
		return false
	}
}

func addOverflows(a, b int64) bool {
	if b > 0 && a > math.MaxInt64-b {
		return true
	}
	if b < 0 && a < math.MinInt64-b {
		return true
	}
	return false
}

func subOverflows(a, b int64) bool {
	if b == math.MinInt64 {
		return a >= 0
	}
	return addOverflows(a, -b)
}

func mulOverflows(a, b int64) bool {
	if a == 0 || b == 0 {
		return false
	}
	result := a * b
	if a == -1 && b == math.MinInt64 {
		return true
	}
	return result/a != b
}

// execArith handles int and float binary arithmetic. Int ops
// check overflow and division/modulo by zero; float ops follow IEEE-754
// (no trap on division by zero, producing ±Inf/NaN).
func (vm *VmState) execArith(ins Instruction) (StepOutcome, error) {
	switch ins.Op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod:
		rhs, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		lhs, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		if lhs.Kind != ValInt || rhs.Kind != ValInt {
			return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "Int", "lhs": lhs.TypeName(), "rhs": rhs.TypeName()})
		}
		a, b := lhs.Int, rhs.Int
		switch ins.Op {
		case OpAdd:
			if addOverflows(a, b) {
				return StepOutcome{}, newError(ErrArithmeticOverflow, vm.context(), map[string]any{"op": "Add", "a": a, "b": b})
			}
			vm.push(IntValue(a + b))
		case OpSub:
			if subOverflows(a, b) {
				return StepOutcome{}, newError(ErrArithmeticOverflow, vm.context(), map[string]any{"op": "Sub", "a": a, "b": b})
			}
			vm.push(IntValue(a - b))
		case OpMul:
			if mulOverflows(a, b) {
				return StepOutcome{}, newError(ErrArithmeticOverflow, vm.context(), map[string]any{"op": "Mul", "a": a, "b": b})
			}
			vm.push(IntValue(a * b))
		case OpDiv:
			if b == 0 {
				return StepOutcome{}, newError(ErrDivisionByZero, vm.context(), map[string]any{"op": "Div"})
			}
			if a == math.MinInt64 && b == -1 {
				return StepOutcome{}, newError(ErrArithmeticOverflow, vm.context(), map[string]any{"op": "Div", "a": a, "b": b})
			}
			vm.push(IntValue(a / b))
		case OpMod:
			if b == 0 {
				return StepOutcome{}, newError(ErrDivisionByZero, vm.context(), map[string]any{"op": "Mod"})
			}
			vm.push(IntValue(a % b))
		}
	case OpFAdd, OpFSub, OpFMul, OpFDiv:
		rhs, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		lhs, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		if lhs.Kind != ValFloat || rhs.Kind != ValFloat {
			return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "Float", "lhs": lhs.TypeName(), "rhs": rhs.TypeName()})
		}
		a, b := lhs.Float, rhs.Float
		switch ins.Op {
		case OpFAdd:
			vm.push(FloatValue(a + b))
		case OpFSub:
			vm.push(FloatValue(a - b))
		case OpFMul:
			vm.push(FloatValue(a * b))
		case OpFDiv:
			vm.push(FloatValue(a / b))
		}
	}
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
