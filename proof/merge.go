package proof

import "github.com/ashbury-labs/mpf/trie"

// Merge reconciles two tries built under the same Hasher into one
// containing every entry of both: a key present in only one side
// carries over unchanged, a key present in both with matching value
// hashes coalesces into one entry, and a key present in both with
// differing value hashes fails with a MergeConflictError rather than
// silently preferring either side. This makes Merge convergent,
// associative, commutative, and idempotent.
func Merge(a, b *trie.Trie) (*trie.Trie, error) {
	out := a
	for _, e := range b.Entries() {
		existing, ok := out.LookupPath(e.Path)
		if ok {
			if !existing.Equal(e.ValueHash) {
				return nil, &MergeConflictError{Key: e.Path}
			}
			continue
		}
		var err error
		out, err = out.InsertPath(e.Path, e.ValueHash)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
