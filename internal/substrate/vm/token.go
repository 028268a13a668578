package vm

import "github.com/latticevm/substrate/internal/substrate/memory"

// internCell boxes an immediate Value so it can be addressed by a
// memory.Token's 31-bit immediate payload.
func (vm *VmState) internCell(v Value) uint32 {
	idx := uint32(len(vm.Cells))
	vm.Cells = append(vm.Cells, v)
	return idx
}

// valueToToken encodes v as a Token for storage in a pair/closure slot:
// pointer-kind Values store their HeapPtr directly; everything else is
// boxed into Cells and addressed by index.
func (vm *VmState) valueToToken(v Value) memory.Token {
	if v.IsPointer() {
		return memory.PtrToken(v.Ptr)
	}
	return memory.ImmediateToken(vm.internCell(v))
}

// tokenToValue decodes a Token previously produced by valueToToken. For a
// pointer-valued token, the arena header's tag distinguishes which
// pointer-kind Value to reconstruct.
func (vm *VmState) tokenToValue(tok memory.Token) (Value, *VmError) {
	if !tok.IsPointer() {
		idx := tok.Payload()
		if idx >= uint32(len(vm.Cells)) {
			return Value{}, newError(ErrInvalidHeapPtr, vm.context(), map[string]any{"cell_index": idx})
		}
		return vm.Cells[idx], nil
	}
	ptr := tok.Ptr()
	if !vm.Arena.InBounds(ptr) {
		return Value{}, newError(ErrInvalidHeapPtr, vm.context(), map[string]any{"ptr": uint32(ptr)})
	}
	header := vm.Arena.Header(ptr)
	switch header.Tag {
	case memory.TagPair, memory.TagListCell:
		return PairValue(ptr), nil
	case memory.TagClosure:
		return ClosureValue(ptr), nil
	default:
		return GcPtrValue(ptr), nil
	}
}
