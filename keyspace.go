package imap

// FromInt64 maps a signed int64 onto the uint64 key space so that
// lexicographic (and therefore trie) ordering of the result matches
// numeric ordering of the original value: negative numbers sort before
// zero and positive numbers, across the full int64 range. Adapted from
// the teacher's Key constructors, which added the same `1<<63` offset
// before big-endian-encoding a signed value into an order-preserving byte
// string; here the offset does the same job directly on a uint64 key,
// with no byte encoding needed since imap keys are already uint64.
func FromInt64(i int64) uint64 {
	const offset = uint64(1) << 63
	return uint64(i) + offset
}

// ToInt64 is the inverse of FromInt64.
func ToInt64(key uint64) int64 {
	const offset = uint64(1) << 63
	return int64(key - offset)
}

// FromInt32/FromInt16/FromInt8 apply the same order-preserving offset
// after widening to int64, so keys derived from different signed widths
// remain comparable with each other and with FromInt64.
func FromInt32(i int32) uint64 { return FromInt64(int64(i)) }
func FromInt16(i int16) uint64 { return FromInt64(int64(i)) }
func FromInt8(i int8) uint64   { return FromInt64(int64(i)) }
