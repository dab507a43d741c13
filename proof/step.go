// Package proof builds and verifies succinct membership and
// non-membership proofs over a trie.Trie, and reconciles two tries
// through a CRDT-style merge. Dispatch over the Branch/Fork/Leaf step
// shapes is by inspecting Kind, the same sum-type-by-switch style the
// trie package's own Leaf/Branch nodes use, rather than through an
// interface with virtual dispatch.
package proof

import (
	"github.com/ashbury-labs/mpf/digest"
	"github.com/ashbury-labs/mpf/nibble"
)

// Kind tags which of the three step shapes a Step carries.
type Kind uint8

const (
	// KindBranch means two or more sibling subtrees were set aside at
	// this level; Step.BranchNeighbors carries the 4 sparse-Merkle
	// ascent siblings a Branch step always has.
	KindBranch Kind = iota
	// KindFork means exactly one sibling subtree was set aside, and
	// it is itself a Branch.
	KindFork
	// KindLeaf means exactly one sibling subtree was set aside, and
	// it is a Leaf.
	KindLeaf
)

// ForkNeighbor is the lone sibling left behind when a Branch has
// exactly one other child and that child is a Branch. Prefix and Root
// are the neighbor's own data (its Prefix, and the sparse-Merkle root
// of its own Children) — never the path under verification, since a
// fork means the proven key's path does not pass through it.
type ForkNeighbor struct {
	Nibble byte
	Prefix nibble.Path
	Root   digest.Digest
}

// LeafNeighbor is the lone sibling left behind when a Branch has
// exactly one other child and that child is a Leaf. KeyHash is the
// neighbor's full key digest, rather than just its local Suffix: a
// verifier only knows the queried key's own path, not an arbitrary
// sibling's, so it must be able to expand KeyHash into a full nibble
// path and slice off whatever prefix this step's own ancestors already
// consumed to recover the neighbor's remaining nibbles.
type LeafNeighbor struct {
	Nibble    byte
	KeyHash   digest.Digest
	ValueHash digest.Digest
}

// Step is one level of descent from the root toward a key. Skip is
// the nibble length of the Branch's own prefix at this level — the
// verifier reconstructs its bytes by slicing that many nibbles off
// its own hash of the key under test, rather than the proof carrying
// them explicitly, since that segment always lies on the query's own
// path.
type Step struct {
	Skip uint32
	Kind Kind

	BranchNeighbors [4]digest.Digest
	Fork            ForkNeighbor
	Leaf            LeafNeighbor
}

// WitnessKind tags what was actually found at the position a proof's
// steps descend to.
type WitnessKind uint8

const (
	// WitnessPresent means the queried key's own Leaf was found;
	// ValueHash is its value hash.
	WitnessPresent WitnessKind = iota
	// WitnessAbsentEmpty means the Branch slot the key would occupy
	// was nil.
	WitnessAbsentEmpty
	// WitnessAbsentLeaf means a different key's Leaf occupies the
	// position the queried key would have reached.
	WitnessAbsentLeaf
	// WitnessAbsentBranch means the queried key diverges from an
	// internal Branch's own prefix before reaching any of its
	// children.
	WitnessAbsentBranch
)

// Witness describes the terminal contents a proof's steps bottom out
// at. Exactly one set of fields is meaningful, selected by Kind.
type Witness struct {
	Kind WitnessKind

	ValueHash digest.Digest // WitnessPresent

	OtherSuffix    nibble.Path   // WitnessAbsentLeaf
	OtherValueHash digest.Digest // WitnessAbsentLeaf

	OtherPrefix nibble.Path   // WitnessAbsentBranch
	OtherRoot   digest.Digest // WitnessAbsentBranch
}

// Proof is the ordered list of steps from root to the queried key's
// position, together with a witness describing what is actually
// there. The same shape serves membership proofs (Witness.Kind ==
// WitnessPresent) and non-membership proofs (any Absent* kind).
type Proof struct {
	Steps   []Step
	Witness Witness
}
