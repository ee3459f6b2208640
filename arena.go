package imap

// Arena layout: a single growable []uint32. The first headerWords words are
// reserved for bookkeeping (root pointer, bump mark, free lists, generation,
// value width); everything after that is node storage (16-word strides) and
// value-cell storage (2-word or 4-word strides), both carved from the same
// bump pointer and each with its own singly-linked free list threaded
// through freed slots — the same shape as flier-goutil/pkg/arena's
// next/end/cap bump allocator, generalized from raw pointers to word
// indices so the whole arena stays one self-relative, clonable blob (§3.5).
const (
	headerWords = nodeWords // keep the header a full node-stride wide

	hRoot       = 0 // word offset of the root node, 0 == empty tree
	hMark       = 1 // next free word, the bump pointer
	hNodeFree   = 2 // head of the free-node list, 0 == none
	hCellFree   = 3 // head of the free-value-cell list, 0 == none
	hGeneration = 4 // bumped on every reallocating growth
	hValueWidth = 5 // 0 == unset, 64, or 128
	hNodeCount  = 6 // live node count (for Stats)
	hCellCount  = 7 // live value-cell count (for Stats)
)

// maxWords caps the arena at 2^31 bytes, per spec.
const maxWords = (1 << 31) / 4

type arena struct {
	buf []uint32
}

func newArena() *arena {
	a := &arena{buf: make([]uint32, headerWords, headerWords*4)}
	a.setMark(headerWords)
	return a
}

func (a *arena) root() uint32           { return a.buf[hRoot] }
func (a *arena) setRoot(off uint32)     { a.buf[hRoot] = off }
func (a *arena) mark() uint32           { return a.buf[hMark] }
func (a *arena) setMark(v uint32)       { a.buf[hMark] = v }
func (a *arena) generation() uint32     { return a.buf[hGeneration] }
func (a *arena) valueWidth() uint32     { return a.buf[hValueWidth] }
func (a *arena) setValueWidth(w uint32) { a.buf[hValueWidth] = w }

// cellWords returns the word stride of one value cell for this tree's
// locked value width: 2 words (8 bytes) for Ensure64, 4 words (16 bytes,
// a (x0,y) pair) for Ensure128. Ensure0 trees never allocate cells at all
// — their values live entirely inline in the 26-bit slot payload.
func (a *arena) cellWords() uint32 {
	switch a.valueWidth() {
	case 64:
		return 2
	case 128:
		return 4
	default:
		return 0
	}
}

// ensure grows the arena, doubling capacity, until at least n more words
// are available past the current mark. Returns ErrOutOfSpace instead of
// exceeding maxWords.
func (a *arena) ensure(n uint32) (err error) {
	need := a.mark() + n
	if need <= uint32(len(a.buf)) {
		return nil
	}
	if need <= uint32(cap(a.buf)) {
		a.buf = a.buf[:need]
		return nil
	}
	if need > maxWords {
		return ErrOutOfSpace
	}
	newCap := uint32(cap(a.buf))
	if newCap == 0 {
		newCap = headerWords * 4
	}
	for newCap < need {
		if newCap > maxWords/2 {
			newCap = maxWords
			break
		}
		newCap *= 2
	}
	defer func() {
		if r := recover(); r != nil {
			err = ErrOutOfSpace
		}
	}()
	grown := make([]uint32, need, newCap)
	copy(grown, a.buf)
	a.buf = grown
	a.buf[hGeneration]++
	return nil
}

// allocNode returns the word offset of a fresh, zeroed 16-word node,
// reusing the free list (art_node.go-style slab reuse, here a plain
// singly-linked free list through the first word) before growing the
// arena.
func (a *arena) allocNode() (uint32, error) {
	if head := a.buf[hNodeFree]; head != 0 {
		next := a.buf[head]
		a.buf[hNodeFree] = next
		for i := uint32(0); i < nodeWords; i++ {
			a.buf[head+i] = 0
		}
		a.buf[hNodeCount]++
		return head, nil
	}
	// Node offsets must stay 16-word aligned so a parent slot's 26-bit
	// payload (off/nodeWords) round-trips exactly; value cells bump the
	// same mark by narrower strides, so pad up to the next node boundary
	// first if a cell allocation left a gap.
	aligned := (a.mark() + nodeWords - 1) &^ (nodeWords - 1)
	if err := a.ensure(aligned - a.mark() + nodeWords); err != nil {
		return 0, err
	}
	a.setMark(aligned + nodeWords)
	a.buf[hNodeCount]++
	return aligned, nil
}

func (a *arena) freeNode(off uint32) {
	n := a.nodeAt(off)
	for i := range n {
		n[i] = 0
	}
	n[0] = a.buf[hNodeFree]
	a.buf[hNodeFree] = off
	a.buf[hNodeCount]--
}

// allocCell returns the index (not word offset) of a fresh value cell
// sized per the tree's locked value width.
func (a *arena) allocCell() (uint32, error) {
	cw := a.cellWords()
	if cw == 0 {
		return 0, nil
	}
	if head := a.buf[hCellFree]; head != 0 {
		next := a.buf[head]
		a.buf[hCellFree] = next
		idx := a.cellIndexOf(head)
		for i := uint32(0); i < cw; i++ {
			a.buf[head+i] = 0
		}
		a.buf[hCellCount]++
		return idx, nil
	}
	if err := a.ensure(cw); err != nil {
		return 0, err
	}
	off := a.mark()
	idx := a.cellIndexOf(off)
	if idx > slotPayloadMask {
		return 0, ErrOutOfSpace
	}
	a.setMark(off + cw)
	a.buf[hCellCount]++
	return idx, nil
}

func (a *arena) freeCell(idx uint32) {
	cw := a.cellWords()
	off := a.cellOffsetOf(idx)
	for i := uint32(0); i < cw; i++ {
		a.buf[off+i] = 0
	}
	a.buf[off] = a.buf[hCellFree]
	a.buf[hCellFree] = off
	a.buf[hCellCount]--
}

// Cells are addressed relative to the end of the header, in units of
// cellWords. The 26-bit slot payload names at most 2^26 cells, fewer than
// a 2^31-byte arena has room for (2^28 8-byte or 2^27 16-byte cells), so
// allocCell returns ErrOutOfSpace rather than hand out an index that does
// not fit.
func (a *arena) cellOffsetOf(idx uint32) uint32 { return headerWords + idx*a.cellWords() }
func (a *arena) cellIndexOf(off uint32) uint32  { return (off - headerWords) / a.cellWords() }

// childOffsetEncode/decode convert between a node's absolute word offset
// and the 26-bit payload stored in a parent slot (the node stride is a
// constant divisor, so this is exact and loses no information as long as
// offsets stay 16-word aligned, which allocNode guarantees).
func childOffsetEncode(off uint32) uint32 { return off / nodeWords }
func childOffsetDecode(enc uint32) uint32 { return enc * nodeWords }
