package proof

import (
	"bytes"

	"github.com/ashbury-labs/mpf/digest"
	"github.com/ashbury-labs/mpf/nibble"
	"github.com/ashbury-labs/mpf/smt"
	"github.com/ashbury-labs/mpf/trie"
)

// Prove walks t from the root toward key, recording one Step per
// Branch it passes through and a terminal Witness describing what it
// finds — a Leaf for key itself, or whatever stands in its place, for
// both membership and non-membership proofs alike. Unlike a plain
// Lookup, Prove never fails on an absent key: absence is exactly what
// a non-membership proof witnesses.
func Prove(t *trie.Trie, key []byte) (Proof, error) {
	path := nibble.Of(t.Hasher(), key)
	steps, witness, err := proveDescend(t.SMT(), t.RootNode(), nibble.Path{}, path)
	if err != nil {
		return Proof{}, err
	}
	return Proof{Steps: steps, Witness: witness}, nil
}

// proveDescend walks node toward the remaining path, threading
// atNode — every nibble already consumed by an ancestor Branch's own
// Prefix and its branching nibble — so that a Leaf step can recover a
// sibling Leaf's full key path (atNode plus the sibling's own branching
// nibble and Suffix), not just the portion local to this node.
func proveDescend(st *smt.Tree, n trie.Node, atNode nibble.Path, path nibble.Path) ([]Step, Witness, error) {
	switch node := n.(type) {
	case nil:
		return nil, Witness{Kind: WitnessAbsentEmpty}, nil
	case *trie.Leaf:
		if bytes.Equal(path, node.Suffix) {
			return nil, Witness{Kind: WitnessPresent, ValueHash: node.ValueHash}, nil
		}
		return nil, Witness{Kind: WitnessAbsentLeaf, OtherSuffix: node.Suffix, OtherValueHash: node.ValueHash}, nil
	case *trie.Branch:
		common := nibble.CommonPrefixLen(path, node.Prefix)
		if common < len(node.Prefix) {
			// The full prefix, not just the unmatched tail past common:
			// replay (verify.go) folds this value whole into
			// H(encode_nibbles(prefix) ∥ root), the same formula
			// newBranch uses, so it needs the Branch's entire own
			// prefix, not the portion beyond where the queried key
			// happens to diverge from it.
			return nil, Witness{Kind: WitnessAbsentBranch, OtherPrefix: node.Prefix, OtherRoot: node.ChildrenRoot()}, nil
		}
		if common == len(path) {
			return nil, Witness{}, errShortPath
		}
		atBranch := concatPath(atNode, node.Prefix)
		n0, rest := path[common], path[common+1:]
		step, err := buildStep(st, node, n0, atBranch)
		if err != nil {
			return nil, Witness{}, err
		}
		restSteps, witness, err := proveDescend(st, node.Children[n0], append(atBranch, n0), rest)
		if err != nil {
			return nil, Witness{}, err
		}
		return append([]Step{step}, restSteps...), witness, nil
	default:
		return nil, Witness{}, errShortPath
	}
}

// concatPath returns a fresh nibble.Path of a ∥ b, never aliasing
// either input's backing array — atNode is reused across sibling
// recursive calls at the same Branch, so each derived path must own
// its storage.
func concatPath(a, b nibble.Path) nibble.Path {
	out := make(nibble.Path, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// buildStep records whatever must be set aside at node to later
// reconstruct its hash: the 4 sparse-Merkle ascent siblings when two
// or more other children exist, or the lone other child's own data
// when exactly one does. target need not itself be populated — a
// Branch step works the same whether the proof is about to descend
// into a real child or find nothing there. atBranch is the full
// nibble path consumed by every ancestor plus node's own Prefix,
// needed to recover a sole Leaf neighbor's full key path.
func buildStep(st *smt.Tree, node *trie.Branch, target byte, atBranch nibble.Path) (Step, error) {
	others, soleIdx := 0, -1
	for i, c := range node.Children {
		if byte(i) == target || c == nil {
			continue
		}
		others++
		soleIdx = i
	}

	step := Step{Skip: uint32(len(node.Prefix))}

	switch {
	case others >= 2:
		sparse := smt.Children{}
		for i, c := range node.Children {
			if c != nil {
				sparse[i] = c.Hash()
			}
		}
		step.Kind = KindBranch
		step.BranchNeighbors = st.ProofFor(sparse, int(target))
	case others == 1:
		switch sole := node.Children[soleIdx].(type) {
		case *trie.Branch:
			step.Kind = KindFork
			step.Fork = ForkNeighbor{Nibble: byte(soleIdx), Prefix: sole.Prefix, Root: sole.ChildrenRoot()}
		case *trie.Leaf:
			step.Kind = KindLeaf
			// The wire format's Leaf payload carries the neighbor's
			// full key digest, not just its local Suffix, so the
			// verifier — which only knows the queried key's own path —
			// can still recover the neighbor's remaining nibbles by
			// expanding this digest and slicing off the nibbles
			// already consumed at this level.
			fullPath := concatPath(concatPath(atBranch, nibble.Path{byte(soleIdx)}), sole.Suffix)
			step.Leaf = LeafNeighbor{Nibble: byte(soleIdx), KeyHash: digest.Digest(nibble.PackNibbles(fullPath)), ValueHash: sole.ValueHash}
		}
	default:
		return Step{}, errBrokenBranch
	}
	return step, nil
}
