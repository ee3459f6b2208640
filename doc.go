// Package imap implements an ordered map from uint64 keys to fixed-width
// scalar values, stored as a 16-ary radix trie inside a single growable
// arena.
//
// Every node is a fixed 64-byte, 16-slot block; a key's nibbles select a
// slot at each level, and slots are tagged to say whether they hold a
// child node, an inline scalar, or a boxed value cell. Because every
// reference inside the arena is a word offset rather than a pointer, a
// whole tree is one contiguous, clonable, self-relative buffer.
//
// A Tree selects its value width with Ensure0 for values that fit in 26
// bits inline, Ensure64 for boxed 64-bit values, or Ensure128 for boxed
// (lo, hi) pairs; the 64- and 128-bit widths stay locked once chosen,
// while Ensure0 leaves the width unset. Lookup and Assign return a Slot, an opaque handle good
// for reading or writing that key's value without a second descent; a
// Slot becomes invalid once the tree reallocates, and using it after that
// panics rather than touching moved memory.
package imap
