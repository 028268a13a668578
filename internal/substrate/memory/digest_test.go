package memory

import "testing"

func TestContentDigestChangesWithContent(t *testing.T) {
	a := NewArena(256)
	empty := ContentDigest(a)

	if _, err := a.Allocate(8, TagPair); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	afterAlloc := ContentDigest(a)
	if empty == afterAlloc {
		t.Error("digest should change after allocating an object")
	}
}

func TestContentDigestDeterministic(t *testing.T) {
	a := NewArena(256)
	if _, err := a.Allocate(16, TagVector); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	d1 := ContentDigest(a)
	d2 := ContentDigest(a)
	if d1 != d2 {
		t.Error("ContentDigest should be deterministic for unchanged arena contents")
	}
}
