// Package memory implements the substrate's per-actor heap: a bump
// allocating, tagged arena and a mark-compact garbage collector.
package memory

import "fmt"

// HeapPtr is a 32-bit offset into an Arena's storage: the offset of an
// object's header, as returned by Allocate. Zero is not reserved; it is the
// offset of the first allocation in a fresh arena.
type HeapPtr uint32

// Object tags in use by the VM's heap layouts.
const (
	TagPair     uint8 = 2
	TagClosure  uint8 = 3
	TagListCell uint8 = 4
	TagVector   uint8 = 5
	TagString   uint8 = 6
	TagCode     uint8 = 7 // length-prefixed serialized bytecode block (no child pointers)
)

// headerSize is the on-wire size of an ObjectHeader: size(4) + tag(1) +
// flags(1) + reserved(2).
const headerSize = 8

// markBit is the bit within the header's flags byte used by the
// mark-compact collector.
const markBit uint8 = 0x01

// ObjectHeader is the 8-byte header prepended to every arena allocation.
type ObjectHeader struct {
	Size     uint32
	Tag      uint8
	Flags    uint8
	Reserved uint16
}

func (h ObjectHeader) marked() bool {
	return h.Flags&markBit != 0
}

// Error is the arena's structured failure: ArenaFull, reported with the
// pre-rounded total (header + 8-byte-aligned data) that was requested.
type Error struct {
	Capacity  uint32
	Requested uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("arena full: capacity %d, requested %d", e.Capacity, e.Requested)
}

// Arena is a contiguous byte buffer with a bump pointer. It never frees
// individual objects; memory is reclaimed only by Compact or Reset.
type Arena struct {
	storage   []byte
	nextFree  uint32
	capacity  uint32
}

// NewArena creates an arena with the given capacity in bytes.
func NewArena(capacity uint32) *Arena {
	return &Arena{
		storage:  make([]byte, capacity),
		nextFree: 0,
		capacity: capacity,
	}
}

// Capacity returns the arena's total capacity in bytes.
func (a *Arena) Capacity() uint32 { return a.capacity }

// NextFree returns the current bump pointer.
func (a *Arena) NextFree() uint32 { return a.nextFree }

func alignUp8(size uint32) uint32 {
	return (size + 7) &^ 7
}

// Allocate rounds size up to 8 bytes, writes a zeroed, tagged object at the
// bump pointer, and returns the offset of its header (its data begins
// headerSize bytes later). Returns *Error{Capacity,
// Requested} with the pre-rounded total (header + aligned data) if the
// arena would overflow.
func (a *Arena) Allocate(size uint32, tag uint8) (HeapPtr, error) {
	aligned := alignUp8(size)
	total := headerSize + aligned
	if a.nextFree+total > a.capacity {
		return 0, &Error{Capacity: a.capacity, Requested: total}
	}

	ptr := a.nextFree
	a.nextFree += total

	a.putHeader(ptr, ObjectHeader{Size: size, Tag: tag})
	dataStart := ptr + headerSize
	for i := uint32(0); i < aligned; i++ {
		a.storage[dataStart+i] = 0
	}
	return HeapPtr(ptr), nil
}

// Reset rewinds the bump pointer to zero and zeroes storage.
func (a *Arena) Reset() {
	a.nextFree = 0
	for i := range a.storage {
		a.storage[i] = 0
	}
}

func (a *Arena) putHeader(ptr uint32, h ObjectHeader) {
	a.storage[ptr] = byte(h.Size)
	a.storage[ptr+1] = byte(h.Size >> 8)
	a.storage[ptr+2] = byte(h.Size >> 16)
	a.storage[ptr+3] = byte(h.Size >> 24)
	a.storage[ptr+4] = h.Tag
	a.storage[ptr+5] = h.Flags
	a.storage[ptr+6] = byte(h.Reserved)
	a.storage[ptr+7] = byte(h.Reserved >> 8)
}

func (a *Arena) readHeaderAt(ptr uint32) ObjectHeader {
	size := uint32(a.storage[ptr]) | uint32(a.storage[ptr+1])<<8 |
		uint32(a.storage[ptr+2])<<16 | uint32(a.storage[ptr+3])<<24
	return ObjectHeader{
		Size:     size,
		Tag:      a.storage[ptr+4],
		Flags:    a.storage[ptr+5],
		Reserved: uint16(a.storage[ptr+6]) | uint16(a.storage[ptr+7])<<8,
	}
}

// Header returns the header of the object at ptr. The caller must ensure
// ptr was returned by a prior Allocate on this arena and predates any GC
// cycle that reclaimed it.
func (a *Arena) Header(ptr HeapPtr) ObjectHeader {
	return a.readHeaderAt(uint32(ptr))
}

// Data returns the data region of the object at ptr, sized per its header.
func (a *Arena) Data(ptr HeapPtr) []byte {
	h := a.readHeaderAt(uint32(ptr))
	start := uint32(ptr) + headerSize
	return a.storage[start : start+h.Size]
}

// InBounds reports whether ptr designates a live region: 0 <= ptr <
// next_free. It does not validate that ptr is the start of an object.
func (a *Arena) InBounds(ptr HeapPtr) bool {
	return uint32(ptr) < a.nextFree
}

// ReadU32 reads a little-endian uint32 slot from the data region at ptr,
// used for pointer/immediate-token slots in pairs, closures, and vectors.
func ReadU32(data []byte, offset uint32) uint32 {
	return uint32(data[offset]) | uint32(data[offset+1])<<8 |
		uint32(data[offset+2])<<16 | uint32(data[offset+3])<<24
}

// WriteU32 writes a little-endian uint32 slot into the data region at ptr.
func WriteU32(data []byte, offset uint32, v uint32) {
	data[offset] = byte(v)
	data[offset+1] = byte(v >> 8)
	data[offset+2] = byte(v >> 16)
	data[offset+3] = byte(v >> 24)
}
