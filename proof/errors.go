package proof

import (
	"errors"
	"fmt"

	"github.com/ashbury-labs/mpf/nibble"
)

// errShortPath guards against a path running out of nibbles while a
// Branch still expects to consume one — unreachable given every path
// in the system has the same fixed length, kept as a defensive
// invariant check rather than a panic.
var errShortPath = errors.New("proof: path exhausted before reaching a terminal node")

// errBrokenBranch guards the same invariant trie.errBrokenInvariant
// does (a reachable Branch always has at least two children): if the
// target nibble's siblings come up empty, the Branch should never
// have been reachable in the first place.
var errBrokenBranch = errors.New("proof: branch has no sibling data for a reachable child")

// InvalidProofError reports why Verify rejected a proof.
type InvalidProofError struct {
	Reason string
}

func (e *InvalidProofError) Error() string {
	return fmt.Sprintf("proof: invalid proof: %s", e.Reason)
}

// MergeConflictError reports that two tries bind the same key to
// different values, so Merge refused to pick a winner silently. Key
// identifies the entry by its full nibble path rather than raw key
// bytes, since neither trie retains the latter past insertion.
type MergeConflictError struct {
	Key nibble.Path
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("proof: merge conflict at key path %x", []byte(e.Key))
}

// DecodeError reports a malformed proof encoding.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("proof: decode error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("proof: decode error: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }
