// Package imaptest provides a reference-model oracle for property-testing
// imap's Tree and the intset/interval overlays. A test mutates both the
// Oracle and the system under test identically, then compares the two by
// building a Set3 from each side and calling Equals — the same
// build-a-Set3-and-Equals pattern TomTonic/multimap's own tests use
// (multimap_test.go compares query results against set3.From(...)
// literals), generalized here to compare against an oracle built up over
// a random operation log instead of a fixed literal.
package imaptest

import (
	set3 "github.com/TomTonic/Set3"
)

// Oracle tracks, via a plain map, the set of uint64 keys a test believes
// should currently be present.
type Oracle struct {
	live map[uint64]struct{}
}

// New returns an empty Oracle.
func New() *Oracle {
	return &Oracle{live: make(map[uint64]struct{})}
}

// Assign records that key should now be present.
func (o *Oracle) Assign(key uint64) { o.live[key] = struct{}{} }

// Remove records that key should no longer be present, reporting whether
// it had been.
func (o *Oracle) Remove(key uint64) bool {
	_, had := o.live[key]
	delete(o.live, key)
	return had
}

// Contains reports whether the oracle believes key is present.
func (o *Oracle) Contains(key uint64) bool {
	_, ok := o.live[key]
	return ok
}

// Len returns the number of keys the oracle believes are live.
func (o *Oracle) Len() int { return len(o.live) }

// Set returns the oracle's current belief as a Set3, ready to compare
// against a Set3 built from the system under test's own Iterate output.
func (o *Oracle) Set() *set3.Set3[uint64] {
	keys := make([]uint64, 0, len(o.live))
	for k := range o.live {
		keys = append(keys, k)
	}
	return set3.From(keys...)
}

// FromKeys builds a Set3 out of an arbitrary key slice, for wrapping the
// output of Tree.Iterate in the same comparison the teacher's tests run
// against literal set3.From(...) expectations.
func FromKeys(keys []uint64) *set3.Set3[uint64] {
	return set3.From(keys...)
}
