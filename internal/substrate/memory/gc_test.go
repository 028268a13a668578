package memory

import "testing"

func allocPair(t *testing.T, a *Arena, carTok, cdrTok Token) HeapPtr {
	t.Helper()
	ptr, err := a.Allocate(8, TagPair)
	if err != nil {
		t.Fatalf("Allocate pair: %v", err)
	}
	data := a.Data(ptr)
	WriteU32(data, 0, uint32(carTok))
	WriteU32(data, 4, uint32(cdrTok))
	return ptr
}

func TestCollectReclaimsUnreachableObjects(t *testing.T) {
	a := NewArena(256)

	// p2 is reachable only through p1; p3 is never referenced.
	p2 := allocPair(t, a, ImmediateToken(7), ImmediateToken(8))
	p1 := allocPair(t, a, PtrToken(p2), ImmediateToken(0))
	_ = allocPair(t, a, ImmediateToken(1), ImmediateToken(2))

	root := p1
	roots := staticRoots{&root}

	before := FragmentationRatio(a, roots, DefaultChildSlots)
	if before <= 0 {
		t.Fatalf("fragmentation before collect = %v, want > 0 (p3 is dead)", before)
	}

	stats := Collect(a, roots, DefaultChildSlots)
	if stats.FragmentationAfter != 0 {
		t.Errorf("fragmentation after collect = %v, want 0", stats.FragmentationAfter)
	}
	if a.NextFree() >= 256 {
		t.Errorf("next_free after collect = %d, want less than full capacity", a.NextFree())
	}

	// The root must have been rewritten to the (possibly new) offset of p1,
	// and following it must still reach correctly-valued data.
	data := a.Data(root)
	carTok := Token(ReadU32(data, 0))
	if !carTok.IsPointer() {
		t.Fatal("p1.car should still be a pointer token after relocation")
	}
	p2Data := a.Data(carTok.Ptr())
	if Token(ReadU32(p2Data, 0)) != ImmediateToken(7) {
		t.Error("p2's data did not survive relocation intact")
	}
}

func TestCollectHandlesCycles(t *testing.T) {
	a := NewArena(256)

	p1Ptr, err := a.Allocate(8, TagPair)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	p2 := allocPair(t, a, PtrToken(p1Ptr), ImmediateToken(0))
	// Patch p1 to point at p2, forming a cycle.
	WriteU32(a.Data(p1Ptr), 0, uint32(PtrToken(p2)))
	WriteU32(a.Data(p1Ptr), 4, uint32(ImmediateToken(0)))

	root := p1Ptr
	roots := staticRoots{&root}

	stats := Collect(a, roots, DefaultChildSlots)
	if stats.FragmentationAfter != 0 {
		t.Errorf("fragmentation after collecting a fully-reachable cycle = %v, want 0", stats.FragmentationAfter)
	}

	data := a.Data(root)
	next := Token(ReadU32(data, 0))
	if !next.IsPointer() {
		t.Fatal("p1.car should remain a pointer after relocation")
	}
	nextData := a.Data(next.Ptr())
	backTok := Token(ReadU32(nextData, 0))
	if !backTok.IsPointer() || backTok.Ptr() != root {
		t.Error("cycle should survive relocation: p2.car should point back to the (relocated) root")
	}
}

func TestAutoDefragmentRespectsThresholdAndClamp(t *testing.T) {
	cfg := DefaultDefragmentConfig()
	if cfg.Threshold != 0.3 || !cfg.Auto {
		t.Fatalf("DefaultDefragmentConfig = %+v, want threshold=0.3 auto=true", cfg)
	}
	cfg.SetThreshold(5, true)
	if cfg.Threshold != 1 {
		t.Errorf("SetThreshold(5) did not clamp to 1: got %v", cfg.Threshold)
	}
	cfg.SetThreshold(-5, true)
	if cfg.Threshold != 0 {
		t.Errorf("SetThreshold(-5) did not clamp to 0: got %v", cfg.Threshold)
	}

	a := NewArena(256)
	_ = allocPair(t, a, ImmediateToken(1), ImmediateToken(2))
	// The pair is never rooted, so it is dead from the collector's
	// perspective even though it is the only object in the arena.
	emptyRoots := staticRoots(nil)

	cfg = DefaultDefragmentConfig()
	_, ran := MaybeAutoDefragment(a, emptyRoots, DefaultChildSlots, cfg)
	if !ran {
		t.Error("MaybeAutoDefragment should run when fragmentation exceeds threshold")
	}
	if a.NextFree() != 0 {
		t.Errorf("next_free after defragmenting an all-dead arena = %d, want 0", a.NextFree())
	}

	cfg.SetThreshold(1, true)
	_ = allocPair(t, a, ImmediateToken(3), ImmediateToken(4))
	_, ranAgain := MaybeAutoDefragment(a, emptyRoots, DefaultChildSlots, cfg)
	if ranAgain {
		t.Error("MaybeAutoDefragment should not run when threshold is 1, since a fully dead arena's ratio of 1 does not exceed it")
	}
}
