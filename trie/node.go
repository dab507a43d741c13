package trie

import (
	"github.com/ashbury-labs/mpf/digest"
	"github.com/ashbury-labs/mpf/nibble"
	"github.com/ashbury-labs/mpf/smt"
)

// Node is either a *Leaf, a *Branch, or the untyped nil interface
// standing for Empty. Dispatch is by type switch, not virtual
// dispatch.
type Node interface {
	Hash() digest.Digest
}

// Leaf is a terminal node: Suffix is the portion of the full key path
// remaining at this position, ValueHash is the digest of the stored
// value.
type Leaf struct {
	Suffix    nibble.Path
	ValueHash digest.Digest
	hash      digest.Digest
}

// Hash returns the Leaf's cached node hash.
func (l *Leaf) Hash() digest.Digest { return l.hash }

// Branch is an internal node. Prefix is the nibble run shared by every
// descendant at this position; Children maps nibble 0..15 to a child
// node, nil meaning absent. A reachable Branch always has at least two
// non-nil children.
type Branch struct {
	Prefix   nibble.Path
	Children [16]Node
	// childrenRoot is sparse_merkle_root(Children) on its own, before
	// folding in Prefix — the proof engine's Fork steps need this half
	// of the hash separately from the combined node Hash.
	childrenRoot digest.Digest
	hash         digest.Digest
}

// Hash returns the Branch's cached node hash.
func (b *Branch) Hash() digest.Digest { return b.hash }

// ChildrenRoot returns the sparse-Merkle root of this Branch's own
// Children, without the Prefix folded in. The proof engine's Fork step
// carries exactly this value as a neighbor's root, since verification
// re-derives the neighbor's combined node hash by folding the carried
// prefix back in at replay time.
func (b *Branch) ChildrenRoot() digest.Digest { return b.childrenRoot }

// hashOf returns a node's cached hash, or the null digest for an empty
// (nil) node.
func hashOf(h digest.Hasher, n Node) digest.Digest {
	if n == nil {
		return digest.Null(h)
	}
	return n.Hash()
}

// newLeaf builds a Leaf and eagerly computes its hash at construction
// time rather than recomputing it on every access.
func newLeaf(h digest.Hasher, suffix nibble.Path, valueHash digest.Digest) *Leaf {
	head, tail := nibble.HeadTail(suffix)
	doubled := digest.Sum(h, valueHash)
	return &Leaf{
		Suffix:    suffix,
		ValueHash: valueHash,
		hash:      digest.Sum(h, head, tail, doubled),
	}
}

// newBranch builds a Branch, summarizing children through the sparse
// Merkle tree and folding the prefix into the node hash.
func newBranch(h digest.Hasher, st *smt.Tree, prefix nibble.Path, children [16]Node) *Branch {
	sparse := smt.Children{}
	for i, c := range children {
		if c != nil {
			sparse[i] = c.Hash()
		}
	}
	root := st.Root(sparse)
	return &Branch{
		Prefix:       prefix,
		Children:     children,
		childrenRoot: root,
		hash:         digest.Sum(h, nibble.EncodeNibbles(prefix), root),
	}
}

// concatPath builds a fresh nibble.Path of a ∥ {n} ∥ b, never aliasing
// any of the inputs' backing arrays — required because subtrees are
// shared across Trie values (persistent structure) and must never be
// mutated in place.
func concatPath(a nibble.Path, n byte, b nibble.Path) nibble.Path {
	out := make(nibble.Path, 0, len(a)+1+len(b))
	out = append(out, a...)
	out = append(out, n)
	out = append(out, b...)
	return out
}
