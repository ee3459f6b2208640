package imap

import "math/bits"

// Lookup descends the trie following the key's nibbles against each
// node's branch digit, trusting intermediate nodes without checking their
// stored prefix and verifying the full key only once, at the pos==0 leaf
// this reaches — the "optimistic descent, verified only at the leaf"
// design (§9): a wrong turn caused by an unverified intermediate digit can
// only ever land on an empty slot or a leaf whose stored prefix fails the
// final check, so either way the answer "not found" comes out correct.
func (t *Tree) Lookup(key uint64) (Slot, bool) {
	a := t.a
	off := a.root()
	if off == 0 {
		return Slot{}, false
	}
	for {
		n := a.nodeAt(off)
		pos := n.pos()
		d := uint32((key >> (pos * 4)) & 0xF)
		w := n.slotFor(d)
		switch {
		case isEmpty(w):
			return Slot{}, false
		case isNode(w):
			off = childOffsetDecode(childWords(w))
		case pos == 0:
			if n.sharedPrefix() != (key &^ 0xF) {
				return Slot{}, false
			}
			return Slot{t, a.generation(), off, d}, true
		default:
			// A value slot above pos 0 never occurs by construction
			// (Assign always attaches a fresh pos==0 leaf); treat it
			// defensively as not found rather than misread the payload.
			return Slot{}, false
		}
	}
}

// Assign returns the Slot for key, creating whatever structure is needed
// (a fresh leaf, or a branch split) so the caller can then write a value
// into it. Unlike Lookup, Assign must find the exact point two keys
// diverge, so it verifies every node's stored prefix against the target
// key as it descends rather than trusting intermediate nodes — the extra
// check is a single uint64 compare per level, not a byte-wise scan.
func (t *Tree) Assign(key uint64) (Slot, error) {
	a := t.a
	if a.root() == 0 {
		off, err := a.allocNode()
		if err != nil {
			return Slot{}, err
		}
		leaf := a.nodeAt(off)
		leaf.setPrefix(key, 0)
		a.setRoot(off)
		return Slot{t, a.generation(), off, uint32(key & 0xF)}, nil
	}

	var parentOff, parentDigit uint32
	hasParent := false
	off := a.root()

	for {
		n := a.nodeAt(off)
		pos := n.pos()
		expected := key &^ ((uint64(1) << ((pos + 1) * 4)) - 1)
		if n.sharedPrefix() != expected {
			newOff, err := t.splitNode(off, n, key)
			if err != nil {
				return Slot{}, err
			}
			if hasParent {
				pn := a.nodeAt(parentOff)
				pn.setSlotFor(parentDigit, withChild(pn.slotFor(parentDigit), childOffsetEncode(newOff)))
			} else {
				a.setRoot(newOff)
			}
			return t.Assign(key)
		}

		d := uint32((key >> (pos * 4)) & 0xF)
		w := n.slotFor(d)
		switch {
		case isEmpty(w):
			if pos == 0 {
				return Slot{t, a.generation(), off, d}, nil
			}
			leafOff, err := a.allocNode()
			if err != nil {
				return Slot{}, err
			}
			n = a.nodeAt(off) // allocNode may have reallocated the backing buffer
			leaf := a.nodeAt(leafOff)
			leaf.setPrefix(key, 0)
			n.setSlotFor(d, withChild(n.slotFor(d), childOffsetEncode(leafOff)))
			return Slot{t, a.generation(), leafOff, uint32(key & 0xF)}, nil
		case isNode(w):
			parentOff, parentDigit, hasParent = off, d, true
			off = childOffsetDecode(childWords(w))
		default:
			// pos == 0 and the digit's value slot already exists: this
			// is the key itself (sharedPrefix already verified above).
			return Slot{t, a.generation(), off, d}, nil
		}
	}
}

// splitNode handles a prefix mismatch discovered while descending into the
// node at off: some nibble above off's own branch digit disagrees with
// key. It builds a new branch node hosting both the existing subtree
// (untouched, re-parented below the new node) and a fresh leaf for key,
// and returns the new node's offset for the caller to wire into whatever
// slot used to point at off (or to install as the new root).
func (t *Tree) splitNode(off uint32, n node, key uint64) (uint32, error) {
	a := t.a
	pos := n.pos()
	expected := key &^ ((uint64(1) << ((pos + 1) * 4)) - 1)
	diff := n.sharedPrefix() ^ expected
	k := highestNibble(diff)

	branchOff, err := a.allocNode()
	if err != nil {
		return 0, err
	}
	n = a.nodeAt(off) // re-fetch post allocation
	branch := a.nodeAt(branchOff)
	branch.setPrefix(key, k)

	oldDigit := uint32(n.sharedPrefix()>>(k*4)) & 0xF
	newDigit := uint32(key>>(k*4)) & 0xF

	branch.setSlotFor(oldDigit, withChild(branch.slotFor(oldDigit), childOffsetEncode(off)))

	leafOff, err := a.allocNode()
	if err != nil {
		return 0, err
	}
	branch = a.nodeAt(branchOff) // re-fetch again
	leaf := a.nodeAt(leafOff)
	leaf.setPrefix(key, 0)
	branch.setSlotFor(newDigit, withChild(branch.slotFor(newDigit), childOffsetEncode(leafOff)))

	return branchOff, nil
}

// highestNibble returns the index (0-15) of the most significant nonzero
// hex digit of v.
func highestNibble(v uint64) uint32 {
	if v == 0 {
		return 0
	}
	return uint32(bits.Len64(v)-1) / 4
}
