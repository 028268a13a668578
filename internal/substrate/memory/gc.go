package memory

// Token is the uniform 32-bit encoding used for pair/closure/vector slots:
// the top bit distinguishes a pointer-valued slot (a HeapPtr offset) from
// an immediate-valued slot (a tagged reduction the GC must not follow).
// This is how the spec's "uniformly encoded 32-bit tokens" are realized
// concretely here.
type Token uint32

const immediateBit uint32 = 0x80000000

// IsPointer reports whether t encodes a HeapPtr rather than an immediate.
func (t Token) IsPointer() bool {
	return uint32(t)&immediateBit == 0
}

// Ptr interprets t as a HeapPtr. Callers must check IsPointer first.
func (t Token) Ptr() HeapPtr {
	return HeapPtr(t)
}

// PtrToken encodes ptr as a pointer-valued token.
func PtrToken(ptr HeapPtr) Token {
	return Token(uint32(ptr))
}

// ImmediateToken encodes an arbitrary 31-bit immediate payload as a token
// that the GC will never follow.
func ImmediateToken(payload uint32) Token {
	return Token(payload | immediateBit)
}

// Payload extracts the 31-bit immediate payload. Callers must check
// !IsPointer first.
func (t Token) Payload() uint32 {
	return uint32(t) &^ immediateBit
}

// RootProvider exposes the mutable pointer slots a collector must treat as
// GC roots: every Value on the VM stack, every local in every live call
// frame, every value in every actor mailbox, every entry in the
// scheduler's external message queues, and any explicitly registered
// root. Each returned pointer is rewritten in place after relocation.
type RootProvider interface {
	Roots() []*HeapPtr
}

// ChildSlots returns the byte offsets, within an object's data region, of
// slots that may hold a child Token, given the object's header tag. The
// collector consults Token.IsPointer on each slot's current value before
// following or rewriting it.
type ChildSlots func(tag uint8, data []byte) []uint32

// DefaultChildSlots implements a tag-directed traversal: pairs
// and list-cells have two 4-byte slots at offsets 0 and 4; closures have a
// body pointer at offset 0 and captured slots at 4, 8, …; vectors have a
// sequence of 4-byte slots spanning the whole data region.
func DefaultChildSlots(tag uint8, data []byte) []uint32 {
	switch tag {
	case TagPair, TagListCell:
		return []uint32{0, 4}
	case TagClosure, TagVector:
		offsets := make([]uint32, 0, len(data)/4)
		for off := uint32(0); off+4 <= uint32(len(data)); off += 4 {
			offsets = append(offsets, off)
		}
		return offsets
	default:
		return nil
	}
}

// Stats describes the outcome of a Collect or Defragment call.
type Stats struct {
	ObjectsMoved        int
	BytesReclaimed       uint32
	FragmentationBefore float64
	FragmentationAfter  float64
}

// FragmentationRatio is bytes_in_dead_objects / next_free: 0 on an empty
// or perfectly-packed arena, approaching 1 as most allocated space is dead.
func FragmentationRatio(a *Arena, roots RootProvider, childSlots ChildSlots) float64 {
	if a.nextFree == 0 {
		return 0
	}
	live := liveBytes(a, roots, childSlots)
	dead := a.nextFree - live
	return float64(dead) / float64(a.nextFree)
}

func liveBytes(a *Arena, roots RootProvider, childSlots ChildSlots) uint32 {
	marked := mark(a, roots, childSlots)
	var total uint32
	for ptr := range marked {
		h := a.readHeaderAt(ptr)
		total += headerSize + alignUp8(h.Size)
	}
	return total
}

// mark performs phase 1: starting from roots, traverse reachable objects
// with an explicit work-list (never recursion, so cyclic heap graphs
// terminate), returning the set of marked object offsets.
func mark(a *Arena, roots RootProvider, childSlots ChildSlots) map[uint32]bool {
	marked := make(map[uint32]bool)
	var worklist []uint32

	enqueue := func(ptr uint32) {
		if ptr >= a.nextFree {
			return
		}
		if marked[ptr] {
			return
		}
		marked[ptr] = true
		worklist = append(worklist, ptr)
	}

	// A RootProvider only yields slots that genuinely hold a pointer-typed
	// Value; non-pointer Values (Nil, Int, …) never contribute a root here.
	for _, rootSlot := range roots.Roots() {
		enqueue(uint32(*rootSlot))
	}

	for len(worklist) > 0 {
		ptr := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		h := a.readHeaderAt(ptr)
		data := a.storage[ptr+headerSize : ptr+headerSize+h.Size]
		for _, off := range childSlots(h.Tag, data) {
			tok := Token(ReadU32(data, off))
			if tok.IsPointer() {
				enqueue(uint32(tok.Ptr()))
			}
		}
	}
	return marked
}

// Collect runs a full mark-compact cycle: mark reachable objects, compute
// an old->new relocation map in ascending-offset order, then move marked
// objects and rewrite every pointer slot (in roots and in moved objects)
// through the relocation map. Unreachable objects are dropped.
func Collect(a *Arena, roots RootProvider, childSlots ChildSlots) Stats {
	before := FragmentationRatio(a, roots, childSlots)

	marked := mark(a, roots, childSlots)

	// Ascending order so the compacted region is written in a stable,
	// deterministic layout.
	ordered := make([]uint32, 0, len(marked))
	for ptr := range marked {
		ordered = append(ordered, ptr)
	}
	insertionSortUint32(ordered)

	relocation := make(map[uint32]uint32, len(ordered))
	var compactedNext uint32
	for _, ptr := range ordered {
		h := a.readHeaderAt(ptr)
		relocation[ptr] = compactedNext
		compactedNext += headerSize + alignUp8(h.Size)
	}

	moved := 0
	newStorage := make([]byte, len(a.storage))
	for _, oldPtr := range ordered {
		h := a.readHeaderAt(oldPtr)
		h.Flags &^= markBit
		total := headerSize + alignUp8(h.Size)
		newPtr := relocation[oldPtr]

		copy(newStorage[newPtr:newPtr+total], a.storage[oldPtr:oldPtr+total])
		writeHeaderInto(newStorage, newPtr, h)

		data := newStorage[newPtr+headerSize : newPtr+headerSize+h.Size]
		for _, off := range childSlots(h.Tag, data) {
			tok := Token(ReadU32(data, off))
			if tok.IsPointer() {
				if newChild, ok := relocation[uint32(tok.Ptr())]; ok {
					WriteU32(data, off, newChild)
				}
			}
		}
		if oldPtr != newPtr {
			moved++
		}
	}

	reclaimed := a.nextFree - compactedNext
	a.storage = newStorage
	a.nextFree = compactedNext

	for _, rootSlot := range roots.Roots() {
		if newPtr, ok := relocation[uint32(*rootSlot)]; ok {
			*rootSlot = HeapPtr(newPtr)
		}
	}

	after := FragmentationRatio(a, roots, childSlots)
	return Stats{
		ObjectsMoved:        moved,
		BytesReclaimed:      reclaimed,
		FragmentationBefore: before,
		FragmentationAfter:  after,
	}
}

func writeHeaderInto(storage []byte, ptr uint32, h ObjectHeader) {
	storage[ptr] = byte(h.Size)
	storage[ptr+1] = byte(h.Size >> 8)
	storage[ptr+2] = byte(h.Size >> 16)
	storage[ptr+3] = byte(h.Size >> 24)
	storage[ptr+4] = h.Tag
	storage[ptr+5] = h.Flags
	storage[ptr+6] = byte(h.Reserved)
	storage[ptr+7] = byte(h.Reserved >> 8)
}

func insertionSortUint32(xs []uint32) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j-1] > xs[j]; j-- {
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}

// DefragmentConfig carries the auto-defragmentation threshold, clamped to
// [0, 1] by SetThreshold.
type DefragmentConfig struct {
	Threshold float64
	Auto      bool
}

// DefaultDefragmentConfig matches the spec's stated default threshold.
func DefaultDefragmentConfig() DefragmentConfig {
	return DefragmentConfig{Threshold: 0.3, Auto: true}
}

// SetThreshold clamps threshold to [0, 1] before storing it.
func (c *DefragmentConfig) SetThreshold(threshold float64, auto bool) {
	if threshold < 0 {
		threshold = 0
	}
	if threshold > 1 {
		threshold = 1
	}
	c.Threshold = threshold
	c.Auto = auto
}

// MaybeAutoDefragment runs Collect if auto-defrag is enabled and the
// current fragmentation ratio exceeds the configured threshold.
func MaybeAutoDefragment(a *Arena, roots RootProvider, childSlots ChildSlots, cfg DefragmentConfig) (Stats, bool) {
	if !cfg.Auto {
		return Stats{}, false
	}
	if FragmentationRatio(a, roots, childSlots) <= cfg.Threshold {
		return Stats{}, false
	}
	return Collect(a, roots, childSlots), true
}
