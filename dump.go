package imap

// DumpRecord describes one node or value visited by Dump, in pre-order.
// Dump never prints on its own: callers wire the
// callback to whatever sink they want, a logger, a Graphviz writer, a
// plain counter.
type DumpRecord struct {
	Depth     int
	NodeOff   uint32
	Pos       uint32
	Prefix    uint64
	Digit     uint32
	IsValue   bool
	Key       uint64
	HasParent bool
}

// Dump walks the tree in pre-order (the same order Iterate visits values
// in, but including every internal node, not just value-bearing slots)
// and calls fn once per node and once per populated value slot.
func (t *Tree) Dump(fn func(DumpRecord)) {
	a := t.a
	if a.root() == 0 {
		return
	}
	t.dumpNode(fn, a.root(), 0)
}

func (t *Tree) dumpNode(fn func(DumpRecord), off uint32, depth int) {
	a := t.a
	n := a.nodeAt(off)
	pos := n.pos()
	fn(DumpRecord{
		Depth:   depth,
		NodeOff: off,
		Pos:     pos,
		Prefix:  n.sharedPrefix(),
	})
	for d := uint32(0); d < nodeWords; d++ {
		w := n.slotFor(d)
		if isEmpty(w) {
			continue
		}
		if isNode(w) {
			t.dumpNode(fn, childOffsetDecode(childWords(w)), depth+1)
			continue
		}
		fn(DumpRecord{
			Depth:     depth + 1,
			NodeOff:   off,
			Pos:       pos,
			Digit:     d,
			IsValue:   true,
			Key:       n.sharedPrefix() | uint64(d)<<(pos*4),
			HasParent: true,
		})
	}
}

// DumpGraphviz renders t as a Graphviz "dot" digraph, one edge into each
// non-root node from its parent and one leaf per value, the same kind of
// ad-hoc visual debugging original_source/doc/graph.c produces from the C
// library.
func DumpGraphviz(t *Tree, w func(string)) {
	w("digraph imap {")
	var path []uint32
	t.Dump(func(r DumpRecord) {
		if r.IsValue {
			w(nodeLabel(r.NodeOff) + " -> \"" + hex64(r.Key) + "\";")
			return
		}
		path = append(path[:r.Depth], r.NodeOff)
		w(nodeLabel(r.NodeOff) + " [label=\"pos " + itoa(r.Pos) + "\"];")
		if r.Depth > 0 {
			w(nodeLabel(path[r.Depth-1]) + " -> " + nodeLabel(r.NodeOff) + ";")
		}
	})
	w("}")
}

func nodeLabel(off uint32) string { return "n" + itoa(off) }

func itoa(v uint32) string {
	if v == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func hex64(v uint64) string {
	const digits = "0123456789abcdef"
	var buf [16]byte
	for i := 15; i >= 0; i-- {
		buf[i] = digits[v&0xF]
		v >>= 4
	}
	return "0x" + string(buf[:])
}
