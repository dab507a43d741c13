package digest

import (
	"hash"

	"github.com/ethereum/go-ethereum/crypto"
)

// keccak256 is a second concrete Hasher, demonstrating that the engine
// is genuinely polymorphic over the hash function rather than secretly
// coupled to Blake2s-256.
type keccak256 struct{}

// Keccak256 returns a Hasher backed by go-ethereum's Keccak-256, the
// same primitive used elsewhere in the Ethereum stack to hash
// transactions and trie nodes.
func Keccak256() Hasher { return keccak256{} }

func (keccak256) Size() int { return 32 }

func (keccak256) New() hash.Hash {
	return crypto.NewKeccakState()
}
