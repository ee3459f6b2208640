package imap

// iterFrame is one level of an in-progress pre-order descent: the node at
// off, and the next digit (0-15, 16 meaning exhausted) still to visit.
type iterFrame struct {
	off  uint32
	next uint32
}

// Iterator walks a Tree's keys in ascending order. Depth never exceeds 16
// (pos strictly decreases by at least one nibble per level), so the stack
// is a fixed array rather than a growable slice.
type Iterator struct {
	t     *Tree
	stack [16]iterFrame
	depth int
}

func (it *Iterator) push(off, next uint32) {
	it.stack[it.depth] = iterFrame{off: off, next: next}
	it.depth++
}

// Iterate returns an Iterator positioned before the smallest key in t.
func (t *Tree) Iterate() *Iterator {
	it := &Iterator{t: t}
	if t.a.root() != 0 {
		it.push(t.a.root(), 0)
	}
	return it
}

// Next advances the iterator and returns the next key in ascending order
// along with a Slot for it, or ok==false once exhausted.
func (it *Iterator) Next() (key uint64, slot Slot, ok bool) {
	a := it.t.a
	for it.depth > 0 {
		top := &it.stack[it.depth-1]
		if top.next > 15 {
			it.depth--
			continue
		}
		d := top.next
		top.next++
		n := a.nodeAt(top.off)
		w := n.slotFor(d)
		switch {
		case isEmpty(w):
			continue
		case isNode(w):
			it.push(childOffsetDecode(childWords(w)), 0)
		default:
			pos := n.pos()
			key = n.sharedPrefix() | uint64(d)<<(pos*4)
			slot = Slot{it.t, a.generation(), top.off, d}
			return key, slot, true
		}
	}
	return 0, Slot{}, false
}

// Locate repositions a fresh iterator so the next call to Next returns the
// smallest live key >= key (a ceiling search), or an exhausted iterator if
// no such key exists.
//
// A compressed trie skips levels, so an internal node's own stored prefix
// can diverge from key above its branch position, not just at the leaf:
// indexing straight into a branch array without checking sp against key
// first would follow a digit that happens to match locally while the
// node's skipped-over prefix bits already put the whole subtree on the
// wrong side of key. So every level, not just the terminal one, first
// compares the node's sharedPrefix against the bits of key above this
// node's position: if the prefix is already greater, the entire subtree
// is the answer; if it's already less, the entire subtree is irrelevant
// and is left off the stack so the already-primed ancestor frames resume
// the search at their next sibling; only when the prefixes agree does
// descent continue by indexing the matching digit.
func (t *Tree) Locate(key uint64) *Iterator {
	it := &Iterator{t: t}
	a := t.a
	if a.root() == 0 {
		return it
	}
	off := a.root()
	for {
		n := a.nodeAt(off)
		pos := n.pos()
		sp := n.sharedPrefix()
		expected := key &^ ((uint64(1) << ((pos + 1) * 4)) - 1)

		switch {
		case sp > expected:
			it.push(off, 0)
			return it
		case sp < expected:
			return it
		}

		d := uint32((key >> (pos * 4)) & 0xF)
		w := n.slotFor(d)

		if pos == 0 {
			if hasVal(w) {
				it.push(off, d)
			} else {
				it.push(off, d+1)
			}
			return it
		}

		switch {
		case isEmpty(w):
			it.push(off, d+1)
			return it
		default:
			// w must be node-flagged: value slots only ever occur at
			// pos 0, so anything else found above pos 0 is a child.
			it.push(off, d+1)
			off = childOffsetDecode(childWords(w))
		}
	}
}
