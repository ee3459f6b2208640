package imap

import "errors"

// ErrOutOfSpace is returned by Assign and the value setters (SetVal,
// SetVal64, SetVal128) when growing the arena would exceed the 2^31-byte
// ceiling, or when the underlying allocation itself fails.
var ErrOutOfSpace = errors.New("imap: arena out of space")

func staleSlot() {
	panic("imap: stale Slot used against a reallocated tree")
}

func widthMismatch(have, want string) {
	panic("imap: tree was created with " + have + " values, cannot use " + want + " accessor")
}
