package imap

// nodeWords is the number of uint32 slots in one node: 16 digits at 4
// bytes each, 64 bytes total, aligned to the arena's node stride.
const nodeWords = 16

// node is a typed view into the arena's backing buffer. It never owns
// memory itself; it is a window, re-created on demand from a word offset.
// The teacher reinterprets raw pointers via unsafe.Pointer casts
// (art_node.go's asNode5/asNode51/asNode256); imap instead slices the
// arena's []uint32 buffer directly, so the same bytes remain valid after a
// Clone (which copies the buffer, not pointers into it).
type node []uint32

// nodeAt returns the node whose first word lives at word offset off.
func (a *arena) nodeAt(off uint32) node {
	return node(a.buf[off : off+nodeWords])
}

// pos is the node's branch digit: the incoming key's nibble at this
// position selects which of the node's 16 slots to descend into. It is
// recovered from slot 0's low nibble, which is where prefixWord's digit0
// always lands by construction.
func (n node) pos() uint32 { return nibble(n[0]) }

// prefixWord reconstructs the node's full 64-bit prefix word by
// concatenating all 16 slots' low nibbles, digit i at nibble position i.
func (n node) prefixWord() uint64 {
	var w uint64
	for i := 0; i < nodeWords; i++ {
		w |= uint64(nibble(n[i])) << (uint(i) * 4)
	}
	return w
}

// sharedPrefix returns the bits of the node's prefix word above its
// branch digit: the part of the key every descendant of this node agrees
// on. Digits at and below pos are not part of the shared prefix (digit
// pos is the branch itself; digits below pos belong to whichever child is
// selected).
func (n node) sharedPrefix() uint64 {
	p := n.pos()
	return n.prefixWord() &^ ((uint64(1) << ((p + 1) * 4)) - 1)
}

// setPrefix rewrites every slot's low nibble to match word's digits and
// fixes slot 0's low nibble to pos, per prefixWord(x,pos) = (x &^
// ((1<<((pos+1)*4))-1)) | pos.
func (n node) setPrefix(word uint64, pos uint32) {
	word = (word &^ ((uint64(1) << ((pos + 1) * 4)) - 1)) | uint64(pos)
	for i := 0; i < nodeWords; i++ {
		d := uint32(word>>(uint(i)*4)) & 0xF
		n[i] = withNibble(n[i], d)
	}
}

// slotFor returns the raw slot word reached by digit d (0-15) at this
// node's branch position.
func (n node) slotFor(d uint32) uint32 { return n[d] }

func (n node) setSlotFor(d uint32, s uint32) { n[d] = s }

// popcntHi28 counts how many of the node's 16 slots are non-empty,
// mirroring gaissmai-bart's popcount-over-bitset technique for compacting
// sparse child arrays, generalized here from a separate presence bitmap to
// the slot tag bits themselves (a slot already knows whether it is empty).
func (n node) popcntHi28() int {
	c := 0
	for i := 0; i < nodeWords; i++ {
		if !isEmpty(n[i]) {
			c++
		}
	}
	return c
}

// liveDigits reports which digits (0-15) hold a non-empty slot, low bit
// first, for iteration and collapse decisions.
func (n node) liveDigits() uint32 {
	var m uint32
	for i := 0; i < nodeWords; i++ {
		if !isEmpty(n[i]) {
			m |= 1 << uint(i)
		}
	}
	return m
}
