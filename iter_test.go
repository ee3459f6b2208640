package imap

import (
	"sort"
	"testing"

	"github.com/TomTonic/imap/internal/imaptest"
)

// TestShuffleInsertEquivalence drives the tree through a pseudo-random
// sequence of assigns and removes and checks the ascending key sequence
// Iterate produces against an independent oracle, the same
// build-expected-then-Equals shape TomTonic/multimap's own tests use,
// generalized to a randomized operation log instead of fixed literals.
func TestShuffleInsertEquivalence(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	oracle := imaptest.New()

	seed := uint64(0x2545F4914F6CDD1D)
	next := func() uint64 {
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		return seed
	}

	for i := 0; i < 2000; i++ {
		key := next() % 500
		if next()%3 == 0 && oracle.Contains(key) {
			oracle.Remove(key)
			if !tr.Remove(key) {
				t.Fatalf("Remove(%d): oracle says present, tree says absent", key)
			}
			continue
		}
		oracle.Assign(key)
		slot, err := tr.Assign(key)
		if err != nil {
			t.Fatalf("Assign(%d): %v", key, err)
		}
		if err := slot.SetVal64(key); err != nil {
			t.Fatalf("SetVal64(%d): %v", key, err)
		}
	}

	var got []uint64
	it := tr.Iterate()
	for {
		k, slot, ok := it.Next()
		if !ok {
			break
		}
		if got != nil && got[len(got)-1] >= k {
			t.Fatalf("Iterate produced non-ascending keys: ...%d, %d", got[len(got)-1], k)
		}
		if v := slot.GetVal64(); v != k {
			t.Fatalf("value for key %d = %d, want %d", k, v, k)
		}
		got = append(got, k)
	}

	if len(got) != oracle.Len() {
		t.Fatalf("Iterate produced %d keys, oracle has %d", len(got), oracle.Len())
	}
	wantSet := oracle.Set()
	gotSet := imaptest.FromKeys(got)
	if !gotSet.Equals(wantSet) {
		t.Fatalf("Iterate output does not match oracle")
	}
}

func TestLocateOnEmptyTree(t *testing.T) {
	tr := New()
	it := tr.Locate(123)
	if _, _, ok := it.Next(); ok {
		t.Fatalf("Locate on empty tree: found a key")
	}
}

// TestLocateRevalidatesInternalNodePrefix targets a query whose top nibble
// matches the branch digit leading into a subtree, but whose next nibble
// down diverges from that subtree's own stored prefix: a descent that only
// verifies the leaf it eventually lands on (rather than every internal
// node's prefix along the way) follows the matching top digit into the
// wrong subtree and returns a key smaller than the query.
func TestLocateRevalidatesInternalNodePrefix(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	keys := []uint64{
		0x1000000000000000,
		0x1000000000000010,
		0xF000000000000000,
	}
	for _, k := range keys {
		slot, err := tr.Assign(k)
		if err != nil {
			t.Fatalf("Assign(%#x): %v", k, err)
		}
		if err := slot.SetVal64(k); err != nil {
			t.Fatalf("SetVal64(%#x): %v", k, err)
		}
	}

	q := uint64(0x1F00000000000005)
	want := uint64(0xF000000000000000)
	it := tr.Locate(q)
	got, _, ok := it.Next()
	if !ok || got != want {
		t.Fatalf("Locate(%#x) = (%#x, %v), want (%#x, true)", q, got, ok, want)
	}
}

// TestLocateMultiLevelRandomized drives a tree with full-width random keys
// (forcing multiple internal levels, not just a flat set of leaves under
// one shallow node) and checks Locate against a sorted-slice ceiling
// search at many points during the run.
func TestLocateMultiLevelRandomized(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	live := map[uint64]bool{}

	seed := uint64(0x9E3779B97F4A7C15)
	next := func() uint64 {
		seed ^= seed << 13
		seed ^= seed >> 7
		seed ^= seed << 17
		return seed
	}

	ceiling := func(q uint64) (uint64, bool) {
		sorted := make([]uint64, 0, len(live))
		for k := range live {
			sorted = append(sorted, k)
		}
		sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })
		i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= q })
		if i == len(sorted) {
			return 0, false
		}
		return sorted[i], true
	}

	for i := 0; i < 4000; i++ {
		key := next()
		if next()%4 == 0 && len(live) > 0 {
			for k := range live {
				key = k
				break
			}
			delete(live, key)
			if !tr.Remove(key) {
				t.Fatalf("Remove(%#x): not found", key)
			}
		} else {
			live[key] = true
			slot, err := tr.Assign(key)
			if err != nil {
				t.Fatalf("Assign(%#x): %v", key, err)
			}
			if err := slot.SetVal64(key); err != nil {
				t.Fatalf("SetVal64(%#x): %v", key, err)
			}
		}

		if i%37 != 0 {
			continue
		}
		for _, q := range []uint64{key, key + 1, next()} {
			if key == ^uint64(0) && q == key+1 {
				continue
			}
			want, wantOK := ceiling(q)
			it := tr.Locate(q)
			got, _, gotOK := it.Next()
			if gotOK != wantOK || (gotOK && got != want) {
				t.Fatalf("Locate(%#x) = (%#x,%v), want (%#x,%v)", q, got, gotOK, want, wantOK)
			}
		}
	}
}

func TestLocatePastEverything(t *testing.T) {
	tr := New()
	if err := tr.Ensure64(); err != nil {
		t.Fatalf("Ensure64: %v", err)
	}
	for _, k := range []uint64{1, 2, 3} {
		slot, err := tr.Assign(k)
		if err != nil {
			t.Fatalf("Assign: %v", err)
		}
		if err := slot.SetVal64(k); err != nil {
			t.Fatalf("SetVal64: %v", err)
		}
	}
	it := tr.Locate(100)
	if _, _, ok := it.Next(); ok {
		t.Fatalf("Locate(100) past every key: unexpectedly found one")
	}
}
