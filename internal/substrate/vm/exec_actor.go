package vm

func isActorOp(op Op) bool {
	return op == OpYield || op == OpSend
}

// execActor handles Yield (cooperative suspension, resumed by the
// scheduler) and Send (post a message to another actor's mailbox via the
// Host, preserving per-sender-target order at the scheduler level).
func (vm *VmState) execActor(ins Instruction) (StepOutcome, error) {
	switch ins.Op {
	case OpYield:
		vm.IP++
		return StepOutcome{Kind: StepYield}, nil
	case OpSend:
		msg, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		target, err := vm.pop()
		if err != nil {
			return StepOutcome{}, err
		}
		if target.Kind != ValActorID {
			return StepOutcome{}, newError(ErrTypeMismatch, vm.context(), map[string]any{"expected": "ActorID", "got": target.TypeName()})
		}
		vm.Host.Send(target.ActorID, msg)
	}
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
