package imap

import "testing"

func TestAssignOverwrite(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	slot, err := tr.Assign(42)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := slot.SetVal64(1); err != nil {
		t.Fatalf("SetVal64: %v", err)
	}
	slot2, err := tr.Assign(42)
	if err != nil {
		t.Fatalf("Assign (again): %v", err)
	}
	if got := slot2.GetVal64(); got != 1 {
		t.Fatalf("GetVal64 after re-Assign = %d, want 1", got)
	}
	if err := slot2.SetVal64(2); err != nil {
		t.Fatalf("SetVal64: %v", err)
	}
	if got := slot.GetVal64(); got != 2 {
		t.Fatalf("GetVal64 via original slot = %d, want 2", got)
	}
}

func TestEnsureWidthMismatchPanics(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("Ensure128 after Ensure64: expected panic")
		}
	}()
	_ = tr.Ensure128()
}

func TestStaleSlotPanics(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	slot, err := tr.Assign(1)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	tr.a.buf[hGeneration]++ // simulate a reallocating Ensure
	defer func() {
		if recover() == nil {
			t.Fatalf("HasVal on stale slot: expected panic")
		}
	}()
	slot.HasVal()
}

func TestCloneIsIndependent(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	slot, err := tr.Assign(7)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := slot.SetVal64(100); err != nil {
		t.Fatalf("SetVal64: %v", err)
	}

	clone := tr.Clone()
	cloneSlot, ok := clone.Lookup(7)
	if !ok {
		t.Fatalf("Lookup(7) on clone: not found")
	}
	if err := cloneSlot.SetVal64(200); err != nil {
		t.Fatalf("SetVal64 on clone: %v", err)
	}

	origSlot, ok := tr.Lookup(7)
	if !ok {
		t.Fatalf("Lookup(7) on original: not found")
	}
	if got := origSlot.GetVal64(); got != 100 {
		t.Fatalf("original value mutated by clone write: got %d, want 100", got)
	}
}

func TestLookupEmptyTree(t *testing.T) {
	tr := New()
	if _, ok := tr.Lookup(1); ok {
		t.Fatalf("Lookup on empty tree: found")
	}
}

func TestValue0Inline(t *testing.T) {
	tr := New()
	if err := tr.Ensure0(); err != nil {
		t.Fatalf("Ensure0: %v", err)
	}
	slot, err := tr.Assign(9)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	slot.SetVal0(0x3FFFFFF)
	if got := slot.GetVal0(); got != 0x3FFFFFF {
		t.Fatalf("GetVal0 = %#x, want 0x3ffffff", got)
	}
}

func TestValue128(t *testing.T) {
	tr := New()
	if err := tr.Ensure128(); err != nil {
		t.Fatalf("Ensure128: %v", err)
	}
	slot, err := tr.Assign(3)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := slot.SetVal128(0xAAAAAAAAAAAAAAAA, 0xBBBBBBBBBBBBBBBB); err != nil {
		t.Fatalf("SetVal128: %v", err)
	}
	lo, hi := slot.GetVal128()
	if lo != 0xAAAAAAAAAAAAAAAA || hi != 0xBBBBBBBBBBBBBBBB {
		t.Fatalf("GetVal128 = (%#x, %#x), want (0xaa.., 0xbb..)", lo, hi)
	}
}
