package vm

// execCheckStepLimit is an explicit checkpoint instruction: it has already
// consumed one step in Step's common accounting, and opportunistically
// compacts the heap if fragmentation has crossed the configured threshold
// in place.
func (vm *VmState) execCheckStepLimit(ins Instruction) (StepOutcome, error) {
	vm.maybeAutoDefragment()
	vm.IP++
	return StepOutcome{Kind: StepContinue}, nil
}
