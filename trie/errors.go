package trie

import "errors"

// ErrNotFound is returned by Delete when the key is absent. Lookup
// reports absence via its boolean return instead of an error, rather
// than forcing every caller through error handling for a routine miss.
var ErrNotFound = errors.New("trie: key not found")

// errBrokenInvariant guards the invariant that every reachable Branch
// has at least two children: it should be unreachable from any public
// API, since Delete's collapse step runs before it could fire.
var errBrokenInvariant = errors.New("trie: branch left with fewer than one child")
