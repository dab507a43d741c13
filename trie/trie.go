// Package trie implements the radix-16 Patricia trie engine: the
// canonical Leaf/Branch shape, insertion and deletion preserving that
// shape, and root-hash recomputation. It is a pure, value-semantics
// data structure — no I/O, no locks, no cancellation.
package trie

import (
	"bytes"
	"fmt"

	"github.com/ashbury-labs/mpf/digest"
	"github.com/ashbury-labs/mpf/nibble"
	"github.com/ashbury-labs/mpf/smt"
)

// Trie is an immutable-by-convention handle on a Patricia trie:
// Insert and Delete return a new Trie sharing whatever subtrees are
// unaffected, rather than mutating the receiver. This gives a
// transactional guarantee for free (a failed operation never changes
// the caller's existing value), and lets independent replicas evolve
// without aliasing before being reconciled with Merge.
type Trie struct {
	hasher digest.Hasher
	smt    *smt.Tree
	root   Node
}

// New returns an empty trie parameterized by h. The null digest of h's
// width is the empty trie's root hash.
func New(h digest.Hasher) *Trie {
	return &Trie{hasher: h, smt: smt.New(h), root: nil}
}

// Hasher returns the trie's hash capability, so collaborators (proof
// generation, merge) can share the exact same Hasher and sparse-tree
// cache rather than reconstructing one.
func (t *Trie) Hasher() digest.Hasher { return t.hasher }

// SMT returns the trie's sparse-Merkle summarizer.
func (t *Trie) SMT() *smt.Tree { return t.smt }

// Root returns the trie's current root digest.
func (t *Trie) Root() digest.Digest {
	return hashOf(t.hasher, t.root)
}

// RootNode exposes the raw root node (nil for Empty) for collaborators
// that need to inspect trie shape directly, such as the proof engine.
func (t *Trie) RootNode() Node { return t.root }

// withRoot returns a new Trie sharing hasher/smt but with a different
// root node.
func (t *Trie) withRoot(root Node) *Trie {
	return &Trie{hasher: t.hasher, smt: t.smt, root: root}
}

// Lookup returns the value hash stored at key, if any.
func (t *Trie) Lookup(key []byte) (digest.Digest, bool) {
	path := nibble.Of(t.hasher, key)
	return lookup(t.root, path)
}

// LookupPath looks up by full nibble path directly, the counterpart
// to InsertPath: Merge needs to test whether a path from one replica
// is already bound in the other without ever recovering raw key bytes.
func (t *Trie) LookupPath(path nibble.Path) (digest.Digest, bool) {
	return lookup(t.root, path)
}

func lookup(n Node, path nibble.Path) (digest.Digest, bool) {
	switch node := n.(type) {
	case nil:
		return nil, false
	case *Leaf:
		if bytes.Equal(path, node.Suffix) {
			return node.ValueHash, true
		}
		return nil, false
	case *Branch:
		if len(path) < len(node.Prefix) || !bytes.Equal(path[:len(node.Prefix)], node.Prefix) {
			return nil, false
		}
		rest := path[len(node.Prefix):]
		if len(rest) == 0 {
			return nil, false
		}
		return lookup(node.Children[rest[0]], rest[1:])
	default:
		return nil, false
	}
}

// Insert adds key → valueHash, returning the resulting trie. If key is
// already present its value hash is overwritten in place, so
// re-inserting the same value for an existing key is a no-op on the
// resulting root hash.
func (t *Trie) Insert(key []byte, valueHash []byte) (*Trie, error) {
	path := nibble.Of(t.hasher, key)
	return t.InsertPath(path, digest.Digest(valueHash))
}

// InsertPath inserts by full nibble path directly, skipping the
// key-to-path hash. The trie never retains raw key bytes past
// insertion, so this is what the proof engine's Merge operates
// through when reconciling two replicas' entries.
func (t *Trie) InsertPath(path nibble.Path, valueHash digest.Digest) (*Trie, error) {
	newRoot, err := insertNode(t.hasher, t.smt, t.root, path, valueHash)
	if err != nil {
		return t, err
	}
	return t.withRoot(newRoot), nil
}

func insertNode(h digest.Hasher, st *smt.Tree, n Node, path nibble.Path, valueHash digest.Digest) (Node, error) {
	switch node := n.(type) {
	case nil:
		return newLeaf(h, path, valueHash), nil
	case *Leaf:
		return insertIntoLeaf(h, st, node, path, valueHash)
	case *Branch:
		return insertIntoBranch(h, st, node, path, valueHash)
	default:
		return nil, fmt.Errorf("trie: unknown node type %T", n)
	}
}

// insertIntoLeaf handles descent reaching an existing Leaf: either the
// overwrite short-circuit (same key), or splitting the Leaf into a new
// Branch over the common prefix of the two suffixes. Because every
// path the engine ever compares has the same fixed length (2×digest
// width), a Leaf's Suffix and the new key's remaining path are always
// equal length here, so the common prefix either covers both fully
// (same key) or stops strictly short of both (a genuine split).
func insertIntoLeaf(h digest.Hasher, st *smt.Tree, node *Leaf, path nibble.Path, valueHash digest.Digest) (Node, error) {
	common := nibble.CommonPrefixLen(path, node.Suffix)
	if common == len(path) && common == len(node.Suffix) {
		return newLeaf(h, path, valueHash), nil
	}

	oldNibble, oldRest := node.Suffix[common], node.Suffix[common+1:]
	newNibble, newRest := path[common], path[common+1:]

	var children [16]Node
	children[oldNibble] = newLeaf(h, oldRest, node.ValueHash)
	children[newNibble] = newLeaf(h, newRest, valueHash)
	return newBranch(h, st, path[:common], children), nil
}

// insertIntoBranch handles descent reaching a Branch: either extending
// it with a new child when the key shares its full prefix, or forking
// it when the key's path only partially matches the prefix, splitting
// the Branch at the point of divergence.
func insertIntoBranch(h digest.Hasher, st *smt.Tree, node *Branch, path nibble.Path, valueHash digest.Digest) (Node, error) {
	common := nibble.CommonPrefixLen(path, node.Prefix)

	if common == len(node.Prefix) {
		// Full prefix match: descend into (or create) the child at the
		// next nibble.
		n0, rest := path[common], path[common+1:]
		child, err := insertNode(h, st, node.Children[n0], rest, valueHash)
		if err != nil {
			return nil, err
		}
		children := node.Children
		children[n0] = child
		return newBranch(h, st, node.Prefix, children), nil
	}

	// Forking a Branch: split at the point of divergence.
	oldNibble, oldPrefixRest := node.Prefix[common], node.Prefix[common+1:]
	newNibble, newRest := path[common], path[common+1:]

	oldBranch := newBranch(h, st, oldPrefixRest, node.Children)
	newLeafNode := newLeaf(h, newRest, valueHash)

	var children [16]Node
	children[oldNibble] = oldBranch
	children[newNibble] = newLeafNode
	return newBranch(h, st, path[:common], children), nil
}

// Delete removes key, returning the resulting trie. It fails with
// ErrNotFound if the key is absent, leaving t unmodified.
func (t *Trie) Delete(key []byte) (*Trie, error) {
	path := nibble.Of(t.hasher, key)
	newRoot, err := deleteNode(t.hasher, t.smt, t.root, path)
	if err != nil {
		return t, err
	}
	return t.withRoot(newRoot), nil
}

func deleteNode(h digest.Hasher, st *smt.Tree, n Node, path nibble.Path) (Node, error) {
	switch node := n.(type) {
	case nil:
		return nil, ErrNotFound
	case *Leaf:
		if !bytes.Equal(path, node.Suffix) {
			return nil, ErrNotFound
		}
		return nil, nil
	case *Branch:
		common := nibble.CommonPrefixLen(path, node.Prefix)
		if common != len(node.Prefix) {
			return nil, ErrNotFound
		}
		n0, rest := path[common], path[common+1:]
		newChild, err := deleteNode(h, st, node.Children[n0], rest)
		if err != nil {
			return nil, err
		}

		children := node.Children
		children[n0] = newChild

		remainingIdx, remainingCount := -1, 0
		for i, c := range children {
			if c != nil {
				remainingCount++
				remainingIdx = i
			}
		}
		switch remainingCount {
		case 0:
			return nil, errBrokenInvariant
		case 1:
			return collapse(h, st, node.Prefix, byte(remainingIdx), children[remainingIdx]), nil
		default:
			return newBranch(h, st, node.Prefix, children), nil
		}
	default:
		return nil, fmt.Errorf("trie: unknown node type %T", n)
	}
}

// collapse merges a Branch's prefix and its sole remaining child's
// branching nibble into that child, replacing the Branch entirely so
// that no unary branch is ever left behind and the trie's canonical
// shape is preserved.
func collapse(h digest.Hasher, st *smt.Tree, prefix nibble.Path, nibbleAt byte, child Node) Node {
	switch c := child.(type) {
	case *Leaf:
		return newLeaf(h, concatPath(prefix, nibbleAt, c.Suffix), c.ValueHash)
	case *Branch:
		return newBranch(h, st, concatPath(prefix, nibbleAt, c.Prefix), c.Children)
	default:
		return child
	}
}
