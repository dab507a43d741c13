// Package mpf implements a Merkle-Patricia Forestry: an authenticated
// radix-16 Patricia trie whose Branch nodes summarize their children
// through a nested sparse-binary-Merkle tree, so a proof of membership
// or non-membership for any single key costs a handful of digests per
// level of descent rather than a full sibling list. Forestry is an
// immutable-by-convention value — Insert and Delete return a new
// Forestry rather than mutating the receiver — so a failed operation
// never changes the caller's existing value and independent replicas
// can evolve and later Merge without aliasing.
package mpf

import (
	"github.com/ashbury-labs/mpf/digest"
	"github.com/ashbury-labs/mpf/proof"
	"github.com/ashbury-labs/mpf/trie"
)

// Forestry is the public handle on the authenticated trie.
type Forestry struct {
	hasher digest.Hasher
	t      *trie.Trie
}

// Empty returns a new, empty Forestry over h. Use digest.Blake2s256()
// for the default 32-byte hash capability, or digest.Keccak256() to
// interoperate with Ethereum-style digests — the trie algorithms are
// the same for any Hasher, though key paths, and so the trie's shape,
// follow the chosen Hasher's digests.
func Empty(h digest.Hasher) *Forestry {
	return &Forestry{hasher: h, t: trie.New(h)}
}

// Insert binds key to value, returning the resulting Forestry. Only
// H(value), never value itself, is ever retained. Re-inserting the
// same key with the same value is a no-op on the root digest;
// inserting a different value overwrites the existing binding.
func (f *Forestry) Insert(key, value []byte) (*Forestry, error) {
	nt, err := f.t.Insert(key, digest.Sum(f.hasher, value))
	if err != nil {
		return f, err
	}
	return &Forestry{hasher: f.hasher, t: nt}, nil
}

// Delete removes key, returning the resulting Forestry. It fails with
// trie.ErrNotFound if key is absent, leaving f unchanged.
func (f *Forestry) Delete(key []byte) (*Forestry, error) {
	nt, err := f.t.Delete(key)
	if err != nil {
		return f, err
	}
	return &Forestry{hasher: f.hasher, t: nt}, nil
}

// Lookup returns key's current value hash, and whether key is bound
// at all: the stored value hash or absence, not a comparison against
// a candidate.
func (f *Forestry) Lookup(key []byte) (digest.Digest, bool) {
	return f.t.Lookup(key)
}

// LookupEquals reports whether value is key's current binding, a
// convenience wrapper over Lookup for callers that already hold the
// candidate value and only want a yes/no answer. Raw values are never
// retained, so this compares value hashes rather than returning a
// stored value.
func (f *Forestry) LookupEquals(key, value []byte) bool {
	got, ok := f.Lookup(key)
	if !ok {
		return false
	}
	return got.Equal(digest.Sum(f.hasher, value))
}

// Root returns the Forestry's current root digest: the null digest of
// the Hasher's width for an empty Forestry.
func (f *Forestry) Root() digest.Digest {
	return f.t.Root()
}

// Hasher returns the hash capability f was built over.
func (f *Forestry) Hasher() digest.Hasher {
	return f.hasher
}

// Prove builds a succinct proof of key's membership, or of its
// absence, against f's current root.
func (f *Forestry) Prove(key []byte) (proof.Proof, error) {
	return proof.Prove(f.t, key)
}

// Verify checks that p proves key → value under root, using h as the
// hash capability both the prover and verifier agree on.
func Verify(h digest.Hasher, p proof.Proof, key, value []byte, root digest.Digest) error {
	return proof.VerifyInclusion(h, p, key, digest.Sum(h, value), root)
}

// VerifyAbsence checks that p proves key is absent under root.
func VerifyAbsence(h digest.Hasher, p proof.Proof, key []byte, root digest.Digest) error {
	return proof.VerifyExclusion(h, p, key, root)
}

// Merge reconciles two Forestries built over the same Hasher. A key
// bound in only one side carries over unchanged; a key bound in both
// to the same value coalesces; a key bound in both to different
// values fails with a *proof.MergeConflictError.
func Merge(a, b *Forestry) (*Forestry, error) {
	nt, err := proof.Merge(a.t, b.t)
	if err != nil {
		return nil, err
	}
	return &Forestry{hasher: a.hasher, t: nt}, nil
}

// Clone returns f. Forestry's immutable-by-convention design already
// makes sharing a *Forestry across callers safe — Insert and Delete
// never mutate the receiver — so Clone exists only to spell that
// guarantee out for callers used to defensively copying mutable maps.
func (f *Forestry) Clone() *Forestry {
	return f
}
