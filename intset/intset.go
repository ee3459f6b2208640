// Package intset implements a sparse bitset of uint64 elements on top of
// imap's ordered map: each 26-element bucket of the key space is packed
// into the 26-bit inline scalar an Ensure0 tree already gives for free, so
// a dense run of elements costs one trie leaf rather than one leaf per
// element.
package intset

import (
	"math/bits"

	"github.com/TomTonic/imap"
)

const bucketSize = 26

// Set is a sorted set of uint64 elements.
type Set struct {
	t *imap.Tree
}

// New returns an empty Set.
func New() *Set {
	t := imap.New()
	_ = t.Ensure0()
	return &Set{t: t}
}

func split(e uint64) (q uint64, r uint32) {
	return e / bucketSize, uint32(e % bucketSize)
}

// Add inserts e into the set. The only failure mode is the underlying
// arena hitting its size ceiling.
func (s *Set) Add(e uint64) error {
	q, r := split(e)
	slot, err := s.t.Assign(q)
	if err != nil {
		return err
	}
	slot.SetVal0(slot.GetVal0() | 1<<r)
	return nil
}

// Contains reports whether e is in the set.
func (s *Set) Contains(e uint64) bool {
	q, r := split(e)
	slot, ok := s.t.Lookup(q)
	if !ok {
		return false
	}
	return slot.GetVal0()&(1<<r) != 0
}

// Remove deletes e from the set, reporting whether it was present. When
// the last element of a bucket is removed, the bucket's key is removed via
// the underlying Tree.Remove, not just zeroed; the leaf holding it is
// reclaimed once no other bucket in that leaf is live.
func (s *Set) Remove(e uint64) bool {
	q, r := split(e)
	slot, ok := s.t.Lookup(q)
	if !ok {
		return false
	}
	v := slot.GetVal0()
	bit := uint32(1) << r
	if v&bit == 0 {
		return false
	}
	v &^= bit
	if v == 0 {
		s.t.Remove(q)
	} else {
		slot.SetVal0(v)
	}
	return true
}

// Iterator walks a Set's elements in ascending order.
type Iterator struct {
	it   *imap.Iterator
	q    uint64
	bits uint32
}

// Iterate returns an Iterator positioned before the smallest element.
func (s *Set) Iterate() *Iterator {
	return &Iterator{it: s.t.Iterate()}
}

// Next returns the next element in ascending order, or ok==false once
// exhausted.
func (it *Iterator) Next() (e uint64, ok bool) {
	for it.bits == 0 {
		key, slot, more := it.it.Next()
		if !more {
			return 0, false
		}
		it.q = key
		it.bits = slot.GetVal0()
	}
	r := uint32(bits.TrailingZeros32(it.bits))
	it.bits &^= 1 << r
	return it.q*bucketSize + uint64(r), true
}

// Locate repositions a fresh iterator so the next call to Next returns the
// smallest element >= e, or an exhausted iterator if none exists.
func (s *Set) Locate(e uint64) *Iterator {
	q, r := split(e)
	inner := s.t.Locate(q)
	key, slot, ok := inner.Next()
	if !ok {
		return &Iterator{it: inner}
	}
	if key == q {
		remaining := slot.GetVal0() &^ ((uint32(1) << r) - 1)
		if remaining != 0 {
			return &Iterator{it: inner, q: q, bits: remaining}
		}
		key, slot, ok = inner.Next()
		if !ok {
			return &Iterator{it: inner}
		}
	}
	return &Iterator{it: inner, q: key, bits: slot.GetVal0()}
}
