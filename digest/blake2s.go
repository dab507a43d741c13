package digest

import (
	"hash"

	"golang.org/x/crypto/blake2s"
)

// blake2s256 is the default Hasher: Blake2s-256, 32-byte digests.
type blake2s256 struct{}

// Blake2s256 returns the default hash capability.
func Blake2s256() Hasher { return blake2s256{} }

func (blake2s256) Size() int { return blake2s.Size }

func (blake2s256) New() hash.Hash {
	// Keyless Blake2s-256; error is only possible for oversized keys.
	h, err := blake2s.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}
