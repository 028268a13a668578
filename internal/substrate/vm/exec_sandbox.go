package vm

import "github.com/latticevm/substrate/internal/substrate/capability"

func isSandboxOp(op Op) bool {
	switch op {
	case OpInitSandbox, OpIsolateCapabilities, OpSetErrorHandler, OpLogSandboxViolation, OpCleanupSandbox:
		return true
	default:
		return false
	}
}

// execSandbox handles the sandbox block instructions: InitSandbox
// opens a block and records the handler state and the remaining steps at
// entry, IsolateCapabilities strips the actor's live capability set to
// empty for the block's duration, SetErrorHandler installs the block's
// handler target, LogSandboxViolation records a violation and jumps to
// it, and CleanupSandbox restores the previous handler and any isolated
// capability set. The step count recorded at entry is not restored.
// Errors returned by Step, capability errors included, are not routed to
// the handler; only LogSandboxViolation transfers control to it.
func (vm *VmState) execSandbox(ins Instruction) (StepOutcome, error) {
	switch ins.Op {
	case OpInitSandbox:
		vm.SandboxStack = append(vm.SandboxStack, SandboxRecord{
			StepsAtEntry:   vm.StepsRemaining,
			PrevHandlerIP:  vm.ErrorHandlerIP,
			PrevHandlerSet: vm.ErrorHandlerSet,
		})

	case OpIsolateCapabilities:
		if len(vm.SandboxStack) > 0 {
			top := &vm.SandboxStack[len(vm.SandboxStack)-1]
			top.IsolatedCaps = vm.Host.Capabilities().Clone()
			vm.Host.Capabilities().Clear()
		}

	case OpSetErrorHandler:
		vm.ErrorHandlerIP = vm.IP + 1 + int(ins.I16)
		vm.ErrorHandlerSet = true

	case OpLogSandboxViolation:
		vm.Host.Audit("SandboxViolation", capability.Capability{}, capability.Denied)
		vm.ErrorFlag = false
		if vm.ErrorHandlerSet {
			vm.IP = vm.ErrorHandlerIP
			return StepOutcome{Kind: StepContinue}, nil
		}

	case OpCleanupSandbox:
		if len(vm.SandboxStack) > 0 {
			top := vm.SandboxStack[len(vm.SandboxStack)-1]
			vm.SandboxStack = vm.SandboxStack[:len(vm.SandboxStack)-1]
			vm.ErrorHandlerIP = top.PrevHandlerIP
			vm.ErrorHandlerSet = top.PrevHandlerSet
			if top.IsolatedCaps != nil {
				vm.Host.Capabilities().Replace(top.IsolatedCaps)
			}
		}
	}

	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
