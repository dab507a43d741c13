package trie

import (
	"fmt"
	"io"
)

// Dump writes a human-readable structural view of the trie to w, for
// diagnosing invariant violations in tests. It writes to a
// caller-supplied io.Writer rather than stdout, since the trie itself
// performs no I/O of its own.
func (t *Trie) Dump(w io.Writer) {
	dump(w, t.root, "")
}

func dump(w io.Writer, n Node, indent string) {
	switch node := n.(type) {
	case nil:
		fmt.Fprintf(w, "%sEmpty\n", indent)
	case *Leaf:
		fmt.Fprintf(w, "%sLeaf suffix=%v value=%s\n", indent, []byte(node.Suffix), node.ValueHash)
	case *Branch:
		fmt.Fprintf(w, "%sBranch prefix=%v hash=%s\n", indent, []byte(node.Prefix), node.hash)
		for i, c := range node.Children {
			if c != nil {
				fmt.Fprintf(w, "%s  [%x]:\n", indent, i)
				dump(w, c, indent+"    ")
			}
		}
	}
}
