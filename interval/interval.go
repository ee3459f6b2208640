// Package interval implements a map from half-open intervals [x0, x1) to a
// uint64 payload, keyed internally by each interval's exclusive upper
// bound x1 so a point query reduces to imap's ceiling search (Locate).
package interval

import (
	"errors"

	"github.com/TomTonic/imap"
)

// ErrOverlap is returned by Insert when the new interval overlaps an
// interval already stored in the map.
var ErrOverlap = errors.New("interval: overlap with an existing interval")

// Map is a collection of half-open intervals, each carrying one uint64
// payload, keyed internally by x1 so overlap checks and point queries both
// reduce to a single ceiling search (Locate).
type Map struct {
	t *imap.Tree
}

// New returns an empty Map.
func New() *Map {
	t := imap.New()
	_ = t.Ensure128()
	return &Map{t: t}
}

// succ returns the stored interval with the smallest x1 strictly greater
// than v, i.e. imap's Locate(v+1) — matching original_source's
// imap_succ(tree, v) = imap_locate(tree, v+1).
func (m *Map) succ(v uint64) (x1, x0 uint64, ok bool) {
	it := m.t.Locate(v + 1)
	x1v, slot, more := it.Next()
	if !more {
		return 0, 0, false
	}
	x0v, _ := slot.GetVal128()
	return x1v, x0v, true
}

// Insert adds the interval [x0, x1) with the given payload, keyed by x1.
// Per §4.5, the new interval is rejected with ErrOverlap if it overlaps any
// interval already stored: the successor of x0 and the successor of x1
// must be the same stored interval (or both absent), and if present, that
// interval's own x0 must be >= x1.
func (m *Map) Insert(x0, x1, payload uint64) error {
	if x1 <= x0 {
		panic("interval: x1 must be greater than x0")
	}
	s0key, s0x0, s0ok := m.succ(x0)
	s1key, _, s1ok := m.succ(x1)
	if s0ok != s1ok || (s0ok && s0key != s1key) {
		return ErrOverlap
	}
	if s0ok && s0x0 < x1 {
		return ErrOverlap
	}
	slot, err := m.t.Assign(x1)
	if err != nil {
		return err
	}
	return slot.SetVal128(x0, payload)
}

// Remove deletes the interval that contains point, reporting whether one
// did; a point outside every stored interval leaves the map unchanged.
func (m *Map) Remove(point uint64) bool {
	_, x1, _, ok := m.Contains(point)
	if !ok {
		return false
	}
	return m.t.Remove(x1)
}

// Contains returns the interval covering point, if any: the interval with
// the smallest x1 strictly greater than point whose x0 is also <= point.
func (m *Map) Contains(point uint64) (x0, x1, payload uint64, ok bool) {
	it := m.t.Locate(point + 1)
	x1v, slot, more := it.Next()
	if !more {
		return 0, 0, 0, false
	}
	x0v, payloadv := slot.GetVal128()
	if x0v <= point && point < x1v {
		return x0v, x1v, payloadv, true
	}
	return 0, 0, 0, false
}

// Iterator walks a Map's intervals in ascending order of x1.
type Iterator struct {
	it *imap.Iterator
}

// Iterate returns an Iterator positioned before the interval with the
// smallest x1.
func (m *Map) Iterate() *Iterator {
	return &Iterator{it: m.t.Iterate()}
}

// Locate repositions a fresh iterator at the interval that would answer a
// Contains(key) lookup: the same strict-successor search Insert's overlap
// check and Contains use (original_source's ivmap_locate applies the same
// key+1 offset as imap_succ).
func (m *Map) Locate(key uint64) *Iterator {
	return &Iterator{it: m.t.Locate(key + 1)}
}

// Next returns the next interval in ascending order of x1, or ok==false
// once exhausted.
func (it *Iterator) Next() (x0, x1, payload uint64, ok bool) {
	x1v, slot, more := it.it.Next()
	if !more {
		return 0, 0, 0, false
	}
	x0v, payloadv := slot.GetVal128()
	return x0v, x1v, payloadv, true
}
