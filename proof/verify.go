package proof

import (
	"bytes"

	"github.com/ashbury-labs/mpf/digest"
	"github.com/ashbury-labs/mpf/nibble"
	"github.com/ashbury-labs/mpf/smt"
)

// VerifyInclusion checks that p proves key → valueHash under root.
// It fails if p's witness is not WitnessPresent, if the witnessed
// value hash differs from valueHash, or if replaying p's steps does
// not reach root.
func VerifyInclusion(h digest.Hasher, p Proof, key []byte, valueHash digest.Digest, root digest.Digest) error {
	if p.Witness.Kind != WitnessPresent {
		return &InvalidProofError{Reason: "proof witnesses absence, not inclusion"}
	}
	if !p.Witness.ValueHash.Equal(valueHash) {
		return &InvalidProofError{Reason: "witnessed value hash does not match the claimed value"}
	}
	return replayAndCompare(h, p, key, root)
}

// VerifyExclusion checks that p proves key is absent under root.
func VerifyExclusion(h digest.Hasher, p Proof, key []byte, root digest.Digest) error {
	if p.Witness.Kind == WitnessPresent {
		return &InvalidProofError{Reason: "proof witnesses inclusion, not absence"}
	}
	path := nibble.Of(h, key)
	consumed := 0
	for _, s := range p.Steps {
		consumed += int(s.Skip) + 1
	}
	if consumed <= len(path) {
		rest := path[consumed:]
		ownLeaf := p.Witness.Kind == WitnessAbsentLeaf && bytes.Equal(p.Witness.OtherSuffix, rest)
		onBranch := p.Witness.Kind == WitnessAbsentBranch && nibble.CommonPrefixLen(rest, p.Witness.OtherPrefix) == len(p.Witness.OtherPrefix)
		if ownLeaf || onBranch {
			return &InvalidProofError{Reason: "witness lies on the queried key's own path"}
		}
	}
	return replayAndCompare(h, p, key, root)
}

func replayAndCompare(h digest.Hasher, p Proof, key []byte, root digest.Digest) error {
	path := nibble.Of(h, key)
	got, err := replayRoot(h, p, path)
	if err != nil {
		return err
	}
	if !got.Equal(root) {
		return &InvalidProofError{Reason: "reconstructed root does not match"}
	}
	return nil
}

// replayRoot rebuilds the root digest p's steps and witness imply for
// key's path, working innermost (the witness) to outermost (the
// root), the reverse of the descent Prove performed.
func replayRoot(h digest.Hasher, p Proof, path nibble.Path) (digest.Digest, error) {
	offsets := make([]int, len(p.Steps)+1)
	for i, s := range p.Steps {
		offsets[i+1] = offsets[i] + int(s.Skip) + 1
	}
	consumed := offsets[len(p.Steps)]
	if consumed > len(path) {
		return nil, &InvalidProofError{Reason: "sum of step skips exceeds the key's path length"}
	}

	var cur digest.Digest
	switch p.Witness.Kind {
	case WitnessPresent:
		head, tail := nibble.HeadTail(path[consumed:])
		cur = digest.Sum(h, head, tail, digest.Sum(h, p.Witness.ValueHash))
	case WitnessAbsentEmpty:
		cur = digest.Null(h)
	case WitnessAbsentLeaf:
		head, tail := nibble.HeadTail(p.Witness.OtherSuffix)
		cur = digest.Sum(h, head, tail, digest.Sum(h, p.Witness.OtherValueHash))
	case WitnessAbsentBranch:
		cur = digest.Sum(h, nibble.EncodeNibbles(p.Witness.OtherPrefix), p.Witness.OtherRoot)
	default:
		return nil, &InvalidProofError{Reason: "unknown witness kind"}
	}

	st := smt.New(h)
	for i := len(p.Steps) - 1; i >= 0; i-- {
		step := p.Steps[i]
		begin := offsets[i]
		if begin+int(step.Skip) >= len(path) {
			return nil, &InvalidProofError{Reason: "step skip overruns the key's path"}
		}
		prefix := path[begin : begin+int(step.Skip)]
		n0 := path[begin+int(step.Skip)]

		var subtreeRoot digest.Digest
		switch step.Kind {
		case KindBranch:
			subtreeRoot = smt.Reconstruct(h, cur, int(n0), step.BranchNeighbors)
		case KindFork:
			if step.Fork.Nibble == n0 {
				return nil, &InvalidProofError{Reason: "fork neighbor nibble collides with the key's own path"}
			}
			neighborHash := digest.Sum(h, nibble.EncodeNibbles(step.Fork.Prefix), step.Fork.Root)
			subtreeRoot = st.Root(smt.Children{int(n0): cur, int(step.Fork.Nibble): neighborHash})
		case KindLeaf:
			if step.Leaf.Nibble == n0 {
				return nil, &InvalidProofError{Reason: "leaf neighbor nibble collides with the key's own path"}
			}
			// The neighbor shares every ancestor up to and including
			// this step (same begin, same Skip, same branching level),
			// so its own remaining nibbles are whatever follows that
			// same offset in its full key path.
			neighborPath := nibble.Expand(step.Leaf.KeyHash)
			consumedHere := begin + int(step.Skip) + 1
			if consumedHere > len(neighborPath) {
				return nil, &InvalidProofError{Reason: "leaf neighbor key digest too short for its position"}
			}
			head, tail := nibble.HeadTail(neighborPath[consumedHere:])
			neighborHash := digest.Sum(h, head, tail, digest.Sum(h, step.Leaf.ValueHash))
			subtreeRoot = st.Root(smt.Children{int(n0): cur, int(step.Leaf.Nibble): neighborHash})
		default:
			return nil, &InvalidProofError{Reason: "unknown step kind"}
		}
		cur = digest.Sum(h, nibble.EncodeNibbles(prefix), subtreeRoot)
	}
	return cur, nil
}
