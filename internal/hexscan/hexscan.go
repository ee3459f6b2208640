// Package hexscan tokenizes the small line-oriented command grammar a
// line-protocol driver for imap would read on stdin: one command per
// line, keys and values written in hex. Grounded on
// original_source/test/test.c's own ad-hoc line parsing (it drives the C
// library's test harness off generated commands in exactly this shape).
// Not wired to a cmd/ binary: §1 of the core map's contract treats the
// driver as an external collaborator, not part of the library surface.
package hexscan

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Op identifies which command a Token represents.
type Op int

const (
	// OpAssign is `<hex> = <hex>`: assign the second hex value to the
	// key given by the first.
	OpAssign Op = iota
	// OpRemove is `<hex> r`: remove a key.
	OpRemove
	// OpLocate is `<hex> l`: locate the successor of a key and validate it
	// against an oracle.
	OpLocate
	// OpLookup is the bare line `<hex>`: look up a key.
	OpLookup
	// OpDump is the bare line `d`: dump the tree.
	OpDump
)

// Token is one parsed command line.
type Token struct {
	Op    Op
	Key   uint64
	Value uint64
}

// Scan tokenizes a single line of input. Each line is first normalized to
// NFC (the same normalization TomTonic/multimap applies to its own string
// keys in key.go). NFC composes combining sequences but does not fold
// compatibility forms such as full-width digits, so only ASCII hex digits
// parse.
func Scan(line string) (Token, error) {
	line = norm.NFC.String(line)
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)

	switch len(fields) {
	case 1:
		if fields[0] == "d" {
			return Token{Op: OpDump}, nil
		}
		if key, err := parseHex(fields[0]); err == nil {
			return Token{Op: OpLookup, Key: key}, nil
		}
	case 2:
		key, err := parseHex(fields[0])
		if err != nil {
			return Token{}, err
		}
		switch fields[1] {
		case "r":
			return Token{Op: OpRemove, Key: key}, nil
		case "l":
			return Token{Op: OpLocate, Key: key}, nil
		}
	case 3:
		if fields[1] != "=" {
			break
		}
		key, err := parseHex(fields[0])
		if err != nil {
			return Token{}, err
		}
		val, err := parseHex(fields[2])
		if err != nil {
			return Token{}, err
		}
		return Token{Op: OpAssign, Key: key, Value: val}, nil
	}
	return Token{}, fmt.Errorf("hexscan: malformed line %q", line)
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("hexscan: bad hex literal %q: %w", s, err)
	}
	return v, nil
}
