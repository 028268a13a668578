package vm

import "github.com/latticevm/substrate/internal/substrate/capability"

func isCapabilityOp(op Op) bool {
	switch op {
	case OpHasCap, OpRequestCap, OpGrantCap, OpRevokeCap, OpHostCall:
		return true
	default:
		return false
	}
}

func (vm *VmState) capabilityAt(idx uint32) (capability.Capability, *VmError) {
	if idx >= uint32(len(vm.Constants)) || vm.Constants[idx].Kind != ValCapability {
		return capability.Capability{}, newError(ErrSerializationError, vm.context(), map[string]any{"reason": "constant is not a Capability", "index": idx})
	}
	return vm.Constants[idx].Cap, nil
}

// execCapability handles the capability-mediated instructions.
// RequestCap/GrantCap/RevokeCap consult the decision policy, owned
// by the Host (the scheduler side of the actor), and audit every decision;
// only RequestCap's PendingConsensus outcome suspends the actor, since
// Granted/Denied resolve synchronously within the step.
func (vm *VmState) execCapability(ins Instruction) (StepOutcome, error) {
	switch ins.Op {
	case OpHasCap:
		cap, cerr := vm.capabilityAt(ins.U32A)
		if cerr != nil {
			return StepOutcome{}, cerr
		}
		vm.push(BoolValue(vm.Host.Capabilities().Has(cap)))

	case OpRequestCap:
		cap, cerr := vm.capabilityAt(ins.U32A)
		if cerr != nil {
			return StepOutcome{}, cerr
		}
		justification, _ := vm.stringAt(ins.U32B)

		decision := capability.DecideRequest(vm.Host.ActorView(), cap, justification)
		vm.Host.Audit("Request", cap, decision)
		switch decision {
		case capability.Granted:
			vm.Host.Capabilities().Add(cap)
		case capability.Denied:
			return StepOutcome{}, newError(ErrCapabilityError, vm.context(), map[string]any{"capability": cap.Kind.String()})
		case capability.PendingConsensus:
			vm.IP++
			return StepOutcome{Kind: StepWaitingForCapability, WaitingCap: cap}, nil
		}

	case OpGrantCap:
		cap, cerr := vm.capabilityAt(ins.U32B)
		if cerr != nil {
			return StepOutcome{}, cerr
		}
		decision := vm.Host.Delegate(ins.U32A, cap)
		if decision == capability.Denied {
			return StepOutcome{}, newError(ErrCapabilityError, vm.context(), map[string]any{"capability": cap.Kind.String(), "operation": "Delegate"})
		}

	case OpRevokeCap:
		cap, cerr := vm.capabilityAt(ins.U32B)
		if cerr != nil {
			return StepOutcome{}, cerr
		}
		decision := vm.Host.Revoke(ins.U32A, cap)
		if decision == capability.Denied {
			return StepOutcome{}, newError(ErrCapabilityError, vm.context(), map[string]any{"capability": cap.Kind.String(), "operation": "Revoke"})
		}

	case OpHostCall:
		return vm.execHostCall(ins)
	}

	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}

// hostArithMax bounds the capability-free arithmetic range: ids
// 0..hostArithMax are exposed arithmetic/comparison host calls, everything
// above is side-effecting and capability-gated. hostCallRequiresCapability
// reports whether func_id falls in that gated range.
const hostArithMax = 31

func hostCallRequiresCapability(funcID uint16) bool {
	return funcID > hostArithMax
}

func (vm *VmState) execHostCall(ins Instruction) (StepOutcome, error) {
	argc := int(ins.U8)
	if err := vm.requireStack(argc, "HostCall"); err != nil {
		return StepOutcome{}, err
	}
	args := append([]Value(nil), vm.Stack[len(vm.Stack)-argc:]...)
	vm.Stack = vm.Stack[:len(vm.Stack)-argc]

	if hostCallRequiresCapability(ins.U16) {
		cap, cerr := vm.capabilityAt(ins.U32A)
		if cerr != nil {
			return StepOutcome{}, cerr
		}
		if !vm.Host.Capabilities().Has(cap) {
			return StepOutcome{}, newError(ErrCapabilityError, vm.context(), map[string]any{"capability": cap.Kind.String()})
		}
	}

	result, err := vm.Host.HostCall(ins.U16, ins.U8, args)
	if err != nil {
		vm.ErrorFlag = true
		vm.push(HostErrorToken(err.Error()))
		vm.IP++
		return StepOutcome{Kind: StepContinue}, nil
	}
	vm.push(result)
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
