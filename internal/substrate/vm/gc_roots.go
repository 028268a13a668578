package vm

import "github.com/latticevm/substrate/internal/substrate/memory"

// Roots implements memory.RootProvider: every pointer-kind Value on the
// operand stack and in every live call frame's locals/closed-over
// captures is a GC root. Values waiting in the actor's mailbox or in the
// scheduler's external queues are not part of this root set.
func (vm *VmState) Roots() []*memory.HeapPtr {
	var roots []*memory.HeapPtr
	for i := range vm.Stack {
		if vm.Stack[i].IsPointer() {
			roots = append(roots, &vm.Stack[i].Ptr)
		}
	}
	for f := range vm.CallStack {
		frame := &vm.CallStack[f]
		for i := range frame.Locals {
			if frame.Locals[i].IsPointer() {
				roots = append(roots, &frame.Locals[i].Ptr)
			}
		}
		for i := range frame.ClosedOver {
			if frame.ClosedOver[i].IsPointer() {
				roots = append(roots, &frame.ClosedOver[i].Ptr)
			}
		}
	}
	for i := range vm.Cells {
		if vm.Cells[i].IsPointer() {
			roots = append(roots, &vm.Cells[i].Ptr)
		}
	}
	return roots
}

// childSlots adapts memory.DefaultChildSlots for this VM's heap layout.
func (vm *VmState) childSlots(tag uint8, data []byte) []uint32 {
	return memory.DefaultChildSlots(tag, data)
}

// CollectGarbage runs a full mark-compact cycle over this VM's arena.
func (vm *VmState) CollectGarbage() memory.Stats {
	return memory.Collect(vm.Arena, vm, vm.childSlots)
}

// maybeAutoDefragment runs Collect if fragmentation exceeds the configured
// threshold and auto-defrag is enabled.
func (vm *VmState) maybeAutoDefragment() (memory.Stats, bool) {
	return memory.MaybeAutoDefragment(vm.Arena, vm, vm.childSlots, vm.GCConfig)
}

// FragmentationRatio reports this VM's current heap fragmentation, for the
// scheduler's resource monitoring to aggregate across actors.
func (vm *VmState) FragmentationRatio() float64 {
	return memory.FragmentationRatio(vm.Arena, vm, vm.childSlots)
}
