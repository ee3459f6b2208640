package imap

import "testing"

func TestRemoveNotFound(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	if tr.Remove(1) {
		t.Fatalf("Remove on empty tree: reported found")
	}
	slot, err := tr.Assign(5)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if err := slot.SetVal64(5); err != nil {
		t.Fatalf("SetVal64: %v", err)
	}
	if tr.Remove(6) {
		t.Fatalf("Remove(6): reported found for a key sharing a leaf prefix with 5")
	}
}

func TestRemoveCollapsesChain(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	// Two keys that diverge only at the very top nibble: the root becomes a
	// pos-15 branch over two leaves, so removing one key must splice the
	// branch out and leave the other leaf as the root.
	keys := []uint64{0x1000000000000000, 0x2000000000000000}
	for _, k := range keys {
		slot, err := tr.Assign(k)
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if err := slot.SetVal64(k); err != nil {
			t.Fatalf("SetVal64: %v", err)
		}
	}
	if !tr.Remove(keys[0]) {
		t.Fatalf("Remove(%#x): not found", keys[0])
	}
	if _, ok := tr.Lookup(keys[1]); !ok {
		t.Fatalf("Lookup(%#x) after removing sibling: not found", keys[1])
	}
	if !tr.Remove(keys[1]) {
		t.Fatalf("Remove(%#x): not found", keys[1])
	}
	if tr.a.root() != 0 {
		t.Fatalf("root = %d after draining both keys, want 0", tr.a.root())
	}
}
