package imap

// Tree is an ordered map from uint64 keys to fixed-width scalar values,
// backed by a single arena-allocated 16-ary radix trie. The zero value is
// not usable; construct one with New.
type Tree struct {
	a *arena
}

// New returns an empty tree. The value width (64-bit or 128-bit) is locked
// in by the first Ensure64 or Ensure128 call, or by the first SetVal that
// boxes a value. Ensure0 records nothing: the inline width is the same as
// the unset state.
func New() *Tree {
	return &Tree{a: newArena()}
}

// Stats summarizes an arena's occupancy, supplementing spec.md's Dump with
// the kind of snapshot original_source/perf/bench.cpp reports (node
// counts, fill factor) without a full traversal.
type Stats struct {
	Nodes          int
	FreeNodes      int
	ValueCells     int
	FreeValueCells int
	Bytes          int
	Mark           int
}

func (t *Tree) Stats() Stats {
	a := t.a
	freeNodes := 0
	for p := a.buf[hNodeFree]; p != 0; p = a.buf[p] {
		freeNodes++
	}
	freeCells := 0
	for p := a.buf[hCellFree]; p != 0; p = a.buf[p] {
		freeCells++
	}
	return Stats{
		Nodes:          int(a.buf[hNodeCount]),
		FreeNodes:      freeNodes,
		ValueCells:     int(a.buf[hCellCount]),
		FreeValueCells: freeCells,
		Bytes:          len(a.buf) * 4,
		Mark:           int(a.mark()),
	}
}

// Clone returns an independent deep copy of the tree. Because every
// reference inside the arena is a self-relative word offset rather than a
// pointer, cloning is a plain buffer copy with no fixup pass — the one
// place this module leans on spec.md's own design notes (§6.2) rather than
// on a teacher file, since nothing in the retrieved pack clones a
// self-relative arena this way.
func (t *Tree) Clone() *Tree {
	buf := make([]uint32, len(t.a.buf), cap(t.a.buf))
	copy(buf, t.a.buf)
	return &Tree{a: &arena{buf: buf}}
}

// ensureWidth locks in (or validates) the tree's value width. Asking for
// 64 bits on a tree locked to 128, or the reverse, panics immediately, the
// same way the teacher's node casts panic on a kind mismatch. Width 0 is
// also the unset state, so Ensure0 never locks the tree and a later
// Ensure64/Ensure128 after Ensure0 does not panic.
func (t *Tree) ensureWidth(w uint32) {
	cur := t.a.valueWidth()
	if cur == 0 {
		t.a.setValueWidth(w)
		return
	}
	if cur != w {
		names := map[uint32]string{0: "inline", 64: "64-bit", 128: "128-bit"}
		widthMismatch(names[cur], names[w])
	}
}

// Ensure0 selects inline scalar values (<=26 bits), used by the intset
// overlay and any caller whose payload fits the slot itself. It leaves the
// width unset rather than locking it (see ensureWidth).
func (t *Tree) Ensure0() error {
	t.ensureWidth(0)
	return nil
}

// Ensure64 locks the tree to boxed 64-bit values.
func (t *Tree) Ensure64() error {
	t.ensureWidth(64)
	return t.a.ensure(0)
}

// Ensure128 locks the tree to boxed 128-bit (two uint64) values, used by
// the interval overlay to store an (x0,y) pair per key.
func (t *Tree) Ensure128() error {
	t.ensureWidth(128)
	return t.a.ensure(0)
}

// Slot is an opaque handle to one key's position in the trie, returned by
// Lookup/Assign so a caller can read or write its value without a second
// descent. A Slot is only valid for the generation of the tree it came
// from: any arena growth that reallocates the buffer (during Assign or a
// value write) bumps the generation, and using a stale
// Slot afterward panics rather than silently touching moved memory — the
// "revalidate cheaply against the arena" approach spec.md's design notes
// (§9) suggest, applied stricter than the C original's raw-pointer
// contract.
type Slot struct {
	t          *Tree
	generation uint32
	nodeOff    uint32
	digit      uint32
}

func (s Slot) check() {
	if s.t == nil || s.generation != s.t.a.generation() {
		staleSlot()
	}
}

func (s Slot) slotWord() uint32 { return s.t.a.nodeAt(s.nodeOff).slotFor(s.digit) }

// HasVal reports whether this slot currently holds a value, inline or
// boxed.
func (s Slot) HasVal() bool {
	s.check()
	w := s.slotWord()
	return hasVal(w)
}

// GetVal64 returns the 64-bit value stored at this slot. Panics if the
// tree was not created with Ensure64.
func (s Slot) GetVal64() uint64 {
	s.check()
	widthMustBe(s.t, 64)
	w := s.slotWord()
	if !isBoxed(w) {
		return 0
	}
	off := s.t.a.cellOffsetOf(cellIndex(w))
	return uint64(s.t.a.buf[off]) | uint64(s.t.a.buf[off+1])<<32
}

// SetVal64 stores a 64-bit value at this slot, boxing a new value cell on
// first write and reusing the existing one thereafter.
func (s Slot) SetVal64(v uint64) error {
	s.check()
	widthMustBe(s.t, 64)
	n := s.t.a.nodeAt(s.nodeOff)
	w := n.slotFor(s.digit)
	var idx uint32
	if isBoxed(w) {
		idx = cellIndex(w)
	} else {
		var err error
		idx, err = s.t.a.allocCell()
		if err != nil {
			return err
		}
		n = s.t.a.nodeAt(s.nodeOff) // allocCell may have grown the arena
	}
	off := s.t.a.cellOffsetOf(idx)
	s.t.a.buf[off] = uint32(v)
	s.t.a.buf[off+1] = uint32(v >> 32)
	n.setSlotFor(s.digit, withCell(n.slotFor(s.digit), idx))
	return nil
}

// GetVal128 returns the (lo, hi) pair stored at this slot, used by the
// interval overlay to carry (x0, y). Panics if the tree was not created
// with Ensure128.
func (s Slot) GetVal128() (lo, hi uint64) {
	s.check()
	widthMustBe(s.t, 128)
	w := s.slotWord()
	if !isBoxed(w) {
		return 0, 0
	}
	off := s.t.a.cellOffsetOf(cellIndex(w))
	buf := s.t.a.buf
	lo = uint64(buf[off]) | uint64(buf[off+1])<<32
	hi = uint64(buf[off+2]) | uint64(buf[off+3])<<32
	return
}

// SetVal128 stores a (lo, hi) pair at this slot.
func (s Slot) SetVal128(lo, hi uint64) error {
	s.check()
	widthMustBe(s.t, 128)
	n := s.t.a.nodeAt(s.nodeOff)
	w := n.slotFor(s.digit)
	var idx uint32
	if isBoxed(w) {
		idx = cellIndex(w)
	} else {
		var err error
		idx, err = s.t.a.allocCell()
		if err != nil {
			return err
		}
		n = s.t.a.nodeAt(s.nodeOff)
	}
	off := s.t.a.cellOffsetOf(idx)
	buf := s.t.a.buf
	buf[off] = uint32(lo)
	buf[off+1] = uint32(lo >> 32)
	buf[off+2] = uint32(hi)
	buf[off+3] = uint32(hi >> 32)
	n.setSlotFor(s.digit, withCell(n.slotFor(s.digit), idx))
	return nil
}

// GetVal0 returns the inline 26-bit scalar stored directly in this slot,
// used by Ensure0 trees (no boxed cell involved).
func (s Slot) GetVal0() uint32 {
	s.check()
	widthMustBe(s.t, 0)
	w := s.slotWord()
	if !isScalar(w) {
		return 0
	}
	return inlineValue(w)
}

// SetVal0 stores a 26-bit scalar directly into this slot.
func (s Slot) SetVal0(v uint32) {
	s.check()
	widthMustBe(s.t, 0)
	n := s.t.a.nodeAt(s.nodeOff)
	n.setSlotFor(s.digit, withInline(n.slotFor(s.digit), v))
}

// DelVal clears whatever value this slot holds, releasing a boxed cell
// back to its free list if one was in use. The slot's structural nibble is
// left untouched; only Remove collapses structure.
func (s Slot) DelVal() {
	s.check()
	n := s.t.a.nodeAt(s.nodeOff)
	w := n.slotFor(s.digit)
	if isBoxed(w) {
		s.t.a.freeCell(cellIndex(w))
	}
	n.setSlotFor(s.digit, withEmpty(w))
}

// inlineLimit is the spec's §4.3.3 threshold below which a value fits
// directly in a slot's 26-bit payload; at or above it, GetVal/SetVal box
// the value in a 64-bit cell instead.
const inlineLimit = 1 << 26

// GetVal returns the value stored at this slot under the magnitude-adaptive
// accessor: values below inlineLimit live inline, larger ones are boxed.
// Unlike GetVal64/GetVal128, this does not require a fixed Ensure width —
// inline and boxed values may coexist key-by-key in the same tree.
func (s Slot) GetVal() uint64 {
	s.check()
	w := s.slotWord()
	switch {
	case isScalar(w):
		return uint64(inlineValue(w))
	case isBoxed(w):
		off := s.t.a.cellOffsetOf(cellIndex(w))
		return uint64(s.t.a.buf[off]) | uint64(s.t.a.buf[off+1])<<32
	default:
		return 0
	}
}

// SetVal stores y at this slot, inline if it fits in 26 bits and boxed in a
// 64-bit cell otherwise. Boxing lazily locks the tree's value width to 64
// (panicking via widthMismatch if the tree was already locked to 128), and
// shrinking a previously-boxed slot back below inlineLimit frees its cell.
func (s Slot) SetVal(y uint64) error {
	s.check()
	n := s.t.a.nodeAt(s.nodeOff)
	w := n.slotFor(s.digit)

	if y < inlineLimit {
		if isBoxed(w) {
			s.t.a.freeCell(cellIndex(w))
		}
		n.setSlotFor(s.digit, withInline(w, uint32(y)))
		return nil
	}

	s.t.ensureWidth(64)
	n = s.t.a.nodeAt(s.nodeOff)
	w = n.slotFor(s.digit)
	var idx uint32
	if isBoxed(w) {
		idx = cellIndex(w)
	} else {
		var err error
		idx, err = s.t.a.allocCell()
		if err != nil {
			return err
		}
		n = s.t.a.nodeAt(s.nodeOff) // allocCell may have grown the arena
	}
	off := s.t.a.cellOffsetOf(idx)
	s.t.a.buf[off] = uint32(y)
	s.t.a.buf[off+1] = uint32(y >> 32)
	n.setSlotFor(s.digit, withCell(n.slotFor(s.digit), idx))
	return nil
}

func widthMustBe(t *Tree, w uint32) {
	cur := t.a.valueWidth()
	if cur != w {
		names := map[uint32]string{0: "inline", 64: "64-bit", 128: "128-bit"}
		widthMismatch(names[cur], names[w])
	}
}
