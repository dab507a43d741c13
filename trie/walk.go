package trie

import (
	"github.com/ashbury-labs/mpf/digest"
	"github.com/ashbury-labs/mpf/nibble"
)

// Entry is one key→value binding, addressed by full nibble path
// rather than raw key bytes, since the trie never retains the latter
// past insertion.
type Entry struct {
	Path      nibble.Path
	ValueHash digest.Digest
}

// Entries enumerates every binding in the trie. This gives the proof
// engine's Merge something to iterate: merging two replicas means
// reconciling their key sets, which an in-memory value-semantics trie
// only exposes by walking its own leaves.
func (t *Trie) Entries() []Entry {
	var out []Entry
	walk(t.root, nibble.Path{}, func(p nibble.Path, v digest.Digest) {
		cp := make(nibble.Path, len(p))
		copy(cp, p)
		out = append(out, Entry{Path: cp, ValueHash: v})
	})
	return out
}

func walk(n Node, prefix nibble.Path, fn func(nibble.Path, digest.Digest)) {
	switch node := n.(type) {
	case nil:
		return
	case *Leaf:
		fn(append(prefix, node.Suffix...), node.ValueHash)
	case *Branch:
		base := append(prefix, node.Prefix...)
		for i, c := range node.Children {
			if c != nil {
				walk(c, append(append(nibble.Path{}, base...), byte(i)), fn)
			}
		}
	}
}
