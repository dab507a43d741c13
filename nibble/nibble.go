// Package nibble implements the nibble path layer: hashing keys down
// to a digest, expanding that digest into a nibble sequence, and the
// handful of encodings the trie and proof engine need to fold nibble
// sequences into hash preimages or wire bytes.
package nibble

import "github.com/ashbury-labs/mpf/digest"

// Path is a sequence of nibbles, each stored as one byte in 0..=15.
type Path []byte

// Of hashes key under h and expands the resulting digest into a path
// of length 2*h.Size(), high nibble of each byte first.
func Of(h digest.Hasher, key []byte) Path {
	return Expand(digest.Sum(h, key))
}

// Expand splits each byte of d into a (high, low) nibble pair.
func Expand(d []byte) Path {
	out := make(Path, len(d)*2)
	for i, b := range d {
		out[i*2] = b >> 4
		out[i*2+1] = b & 0x0f
	}
	return out
}

// CommonPrefixLen returns the length of the longest common prefix of
// a and b.
func CommonPrefixLen(a, b Path) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// EncodeNibbles is the canonical byte encoding of a nibble sequence
// used inside hash preimages: one byte per nibble, the nibble in the
// low 4 bits, the high 4 bits zero. An empty sequence encodes to zero
// bytes. This is distinct from PackNibbles, which is the dense 2-per-
// byte wire encoding.
func EncodeNibbles(seq Path) []byte {
	out := make([]byte, len(seq))
	for i, n := range seq {
		out[i] = n & 0x0f
	}
	return out
}

// PackNibbles packs two nibbles per byte, high nibble first. An odd
// count is left-padded with a zero nibble, the wire format's
// packed_nibbles shape and the encoding HeadTail's "tail" half uses.
func PackNibbles(seq Path) []byte {
	padded := seq
	if len(seq)%2 != 0 {
		padded = make(Path, len(seq)+1)
		padded[0] = 0
		copy(padded[1:], seq)
	}
	out := make([]byte, len(padded)/2)
	for i := 0; i < len(out); i++ {
		out[i] = (padded[i*2] << 4) | padded[i*2+1]
	}
	return out
}

// UnpackNibbles is the inverse of PackNibbles given the true nibble
// count (needed to discard the left-padding nibble when count is odd).
func UnpackNibbles(data []byte, count int) Path {
	out := make(Path, len(data)*2)
	for i, b := range data {
		out[i*2] = b >> 4
		out[i*2+1] = b & 0x0f
	}
	return out[len(out)-count:]
}

// HeadTail implements the disambiguating split of a Leaf's path suffix
// used by the Leaf hash formula:
//
//	odd length:  head = {0x00, 0x0X} (X = suffix[0]), tail = pack(suffix[1:])
//	even length: head = {0xFF},       tail = pack(suffix)
//
// Both branches leave tail with an even number of source nibbles, so
// PackNibbles never has to left-pad inside HeadTail itself.
func HeadTail(suffix Path) (head []byte, tail []byte) {
	if len(suffix)%2 != 0 {
		return []byte{0x00, suffix[0] & 0x0f}, PackNibbles(suffix[1:])
	}
	return []byte{0xFF}, PackNibbles(suffix)
}
