package imap

import "math/bits"

type removeFrame struct {
	off, digit uint32
}

// Remove deletes key's value, if present, and collapses any node left
// holding too little to justify its own existence. Collapse reads §4.3.4's
// "stop once a node has 2 or more live slots, or has pos 0" together with
// the boundary property that draining every key returns the tree to an
// empty root: a node at pos 0 with exactly one live slot is the last
// surviving value of a key group and can't be represented any more
// compactly, so it's kept; a node at pos 0 with zero live slots holds
// nothing at all and is freed exactly like an internal node would be. An
// internal node left with exactly one live child is spliced out of the
// path and its lone child re-parented one level up.
func (t *Tree) Remove(key uint64) bool {
	a := t.a
	if a.root() == 0 {
		return false
	}

	var stack [16]removeFrame
	depth := 0
	off := a.root()

	for {
		n := a.nodeAt(off)
		pos := n.pos()
		d := uint32((key >> (pos * 4)) & 0xF)
		w := n.slotFor(d)
		switch {
		case isEmpty(w):
			return false
		case isNode(w):
			stack[depth] = removeFrame{off, d}
			depth++
			off = childOffsetDecode(childWords(w))
		default:
			if n.sharedPrefix() != (key &^ 0xF) {
				return false
			}
			if isBoxed(w) {
				a.freeCell(cellIndex(w))
			}
			n.setSlotFor(d, withEmpty(w))
			return t.collapse(off, stack[:depth])
		}
	}
}

func (t *Tree) collapse(curOff uint32, stack []removeFrame) bool {
	a := t.a
	depth := len(stack)

	for {
		n := a.nodeAt(curOff)
		cnt := n.popcntHi28()
		pos := n.pos()

		if cnt >= 2 || (cnt == 1 && pos == 0) {
			return true
		}

		hasParent := depth > 0
		var parentOff, parentDigit uint32
		if hasParent {
			depth--
			parentOff, parentDigit = stack[depth].off, stack[depth].digit
		}

		if cnt == 0 {
			a.freeNode(curOff)
			if !hasParent {
				a.setRoot(0)
				return true
			}
			pn := a.nodeAt(parentOff)
			pn.setSlotFor(parentDigit, withEmpty(pn.slotFor(parentDigit)))
			curOff = parentOff
			continue
		}

		// cnt == 1 && pos > 0: splice curOff out, re-parenting its one
		// surviving child (always node-flagged: scalar values only ever
		// live in pos-0 nodes).
		survivorDigit := uint32(bits.TrailingZeros32(n.liveDigits()))
		childOff := childOffsetDecode(childWords(n.slotFor(survivorDigit)))
		a.freeNode(curOff)
		if !hasParent {
			a.setRoot(childOff)
			return true
		}
		pn := a.nodeAt(parentOff)
		pn.setSlotFor(parentDigit, withChild(pn.slotFor(parentDigit), childOffsetEncode(childOff)))
		curOff = parentOff
	}
}
