// Package smt implements the sparse Merkle summarizer: given up to 16
// child digests indexed by nibble, it computes the root of a perfect
// binary Merkle tree of depth 4, with precomputed null-subtree digests
// standing in for absent branches so that mostly-empty trees are cheap
// to summarize.
package smt

import "github.com/ashbury-labs/mpf/digest"

// Tree holds a Hasher and its ladder of precomputed null-subtree
// digests: null[d] is the root of an all-absent subtree covering 2^d
// leaf slots. null[0] is the null digest itself.
type Tree struct {
	h    digest.Hasher
	null [5]digest.Digest
}

// New builds the null-subtree ladder for h once; the same Tree can
// summarize any number of 16-slot children sets.
func New(h digest.Hasher) *Tree {
	t := &Tree{h: h}
	t.null[0] = digest.Null(h)
	for d := 1; d <= 4; d++ {
		t.null[d] = combine(h, t.null[d-1], t.null[d-1])
	}
	return t
}

func combine(h digest.Hasher, l, r digest.Digest) digest.Digest {
	return digest.Sum(h, l, r)
}

// Children is a sparse view of the 16 nibble-indexed slots: absent
// slots are omitted rather than stored as an explicit null digest.
type Children map[int]digest.Digest

func (t *Tree) leafAt(children Children, i int) digest.Digest {
	if d, ok := children[i]; ok {
		return d
	}
	return t.null[0]
}

func hasAny(children Children, lo, hi int) bool {
	for i := lo; i < hi; i++ {
		if _, ok := children[i]; ok {
			return true
		}
	}
	return false
}

func (t *Tree) rootAt(children Children, lo, hi, depth int) digest.Digest {
	if hi-lo == 1 {
		return t.leafAt(children, lo)
	}
	mid := (lo + hi) / 2
	if !hasAny(children, lo, hi) {
		return t.null[depth]
	}
	l := t.rootAt(children, lo, mid, depth-1)
	r := t.rootAt(children, mid, hi, depth-1)
	return combine(t.h, l, r)
}

// Root computes the sparse Merkle root over the 16 nibble slots.
func (t *Tree) Root(children Children) digest.Digest {
	return t.rootAt(children, 0, 16, 4)
}

// ProofFor extracts the 4 ascent siblings for target nibble index,
// ordered top-to-bottom: depth-3 root (8-leaf subtree), depth-2 root
// (4-leaf subtree), depth-1 root (2-leaf subtree), depth-0 sibling
// (the other leaf in the pair) — the fixed order a Branch step's
// neighbors are carried in.
func (t *Tree) ProofFor(children Children, index int) [4]digest.Digest {
	var proof [4]digest.Digest
	lo, hi, depth, pos := 0, 16, 4, 0
	for depth > 0 {
		mid := (lo + hi) / 2
		if index < mid {
			proof[pos] = t.rootAt(children, mid, hi, depth-1)
			hi = mid
		} else {
			proof[pos] = t.rootAt(children, lo, mid, depth-1)
			lo = mid
		}
		pos++
		depth--
	}
	return proof
}

// Reconstruct rebuilds the depth-4 root given the leaf digest at
// position index and its 4 ascent siblings in the same top-to-bottom
// order ProofFor returns. It is the verifier's half of a Branch step:
// unlike Root, it needs no knowledge of any sibling subtree's
// contents, only the 4 digests a Branch step actually carries.
func Reconstruct(h digest.Hasher, leaf digest.Digest, index int, siblingsTopToBottom [4]digest.Digest) digest.Digest {
	cur := leaf
	for d := 0; d <= 3; d++ {
		sibling := siblingsTopToBottom[3-d]
		if (index>>uint(d))&1 == 0 {
			cur = combine(h, cur, sibling)
		} else {
			cur = combine(h, sibling, cur)
		}
	}
	return cur
}
