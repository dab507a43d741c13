package trie

import (
	"math/rand"
	"testing"

	"github.com/ashbury-labs/mpf/digest"
)

func valueHash(h digest.Hasher, v string) digest.Digest {
	return digest.Sum(h, []byte(v))
}

func TestEmptyTrieRootIsNull(t *testing.T) {
	h := digest.Blake2s256()
	tr := New(h)
	if !tr.Root().Equal(digest.Null(h)) {
		t.Fatalf("empty trie root = %v, want null digest", tr.Root())
	}
}

func TestInsertThenLookup(t *testing.T) {
	h := digest.Blake2s256()
	tr := New(h)

	entries := map[string]string{"apple": "1", "banana": "2", "cherry": "3"}
	for k, v := range entries {
		var err error
		tr, err = tr.Insert([]byte(k), valueHash(h, v))
		if err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
	}

	for k, v := range entries {
		got, ok := tr.Lookup([]byte(k))
		if !ok {
			t.Fatalf("Lookup(%q) missing", k)
		}
		if !got.Equal(valueHash(h, v)) {
			t.Fatalf("Lookup(%q) = %v, want %v", k, got, valueHash(h, v))
		}
	}

	if _, ok := tr.Lookup([]byte("durian")); ok {
		t.Fatalf("Lookup of absent key succeeded")
	}
}

func TestCanonicalityAcrossInsertOrder(t *testing.T) {
	h := digest.Blake2s256()
	keys := []struct{ k, v string }{
		{"apple", "1"}, {"banana", "2"}, {"cherry", "3"}, {"date", "4"}, {"elderberry", "5"},
	}

	build := func(order []int) digest.Digest {
		tr := New(h)
		for _, i := range order {
			var err error
			tr, err = tr.Insert([]byte(keys[i].k), valueHash(h, keys[i].v))
			if err != nil {
				t.Fatalf("insert: %v", err)
			}
		}
		return tr.Root()
	}

	forward := []int{0, 1, 2, 3, 4}
	reverse := []int{4, 3, 2, 1, 0}
	shuffled := []int{2, 0, 4, 1, 3}

	rootForward := build(forward)
	rootReverse := build(reverse)
	rootShuffled := build(shuffled)

	if !rootForward.Equal(rootReverse) {
		t.Fatalf("forward root %v != reverse root %v", rootForward, rootReverse)
	}
	if !rootForward.Equal(rootShuffled) {
		t.Fatalf("forward root %v != shuffled root %v", rootForward, rootShuffled)
	}
}

func TestInsertOverwriteSameValueIsNoOp(t *testing.T) {
	h := digest.Blake2s256()
	tr, err := New(h).Insert([]byte("k"), valueHash(h, "v"))
	if err != nil {
		t.Fatal(err)
	}
	before := tr.Root()
	tr, err = tr.Insert([]byte("k"), valueHash(h, "v"))
	if err != nil {
		t.Fatal(err)
	}
	if !tr.Root().Equal(before) {
		t.Fatalf("re-inserting the same value changed the root")
	}
}

func TestInsertOverwriteDifferentValueChangesRoot(t *testing.T) {
	h := digest.Blake2s256()
	tr, _ := New(h).Insert([]byte("k"), valueHash(h, "v1"))
	before := tr.Root()
	tr, err := tr.Insert([]byte("k"), valueHash(h, "v2"))
	if err != nil {
		t.Fatal(err)
	}
	if tr.Root().Equal(before) {
		t.Fatalf("overwriting with a different value left the root unchanged")
	}
	got, _ := tr.Lookup([]byte("k"))
	if !got.Equal(valueHash(h, "v2")) {
		t.Fatalf("Lookup after overwrite = %v, want v2 hash", got)
	}
}

func TestDeleteIsInsertInverse(t *testing.T) {
	h := digest.Blake2s256()
	tr, _ := New(h).Insert([]byte("apple"), valueHash(h, "1"))
	tr, _ = tr.Insert([]byte("banana"), valueHash(h, "2"))
	before := tr.Root()

	tr2, err := tr.Insert([]byte("cherry"), valueHash(h, "3"))
	if err != nil {
		t.Fatal(err)
	}
	tr2, err = tr2.Delete([]byte("cherry"))
	if err != nil {
		t.Fatal(err)
	}
	if !tr2.Root().Equal(before) {
		t.Fatalf("delete(insert(t,k,v),k) root = %v, want %v", tr2.Root(), before)
	}
}

func TestDeleteNotFound(t *testing.T) {
	h := digest.Blake2s256()
	tr := New(h)
	if _, err := tr.Delete([]byte("nope")); err != ErrNotFound {
		t.Fatalf("Delete on empty trie: err = %v, want ErrNotFound", err)
	}
	tr, _ = tr.Insert([]byte("apple"), valueHash(h, "1"))
	if _, err := tr.Delete([]byte("banana")); err != ErrNotFound {
		t.Fatalf("Delete of absent key: err = %v, want ErrNotFound", err)
	}
}

func TestNoCollisionNLeaves(t *testing.T) {
	h := digest.Blake2s256()
	tr := New(h)
	r := rand.New(rand.NewSource(1))
	n := 500
	seen := map[string]bool{}
	for len(seen) < n {
		buf := make([]byte, 8)
		r.Read(buf)
		seen[string(buf)] = true
	}
	for k := range seen {
		var err error
		tr, err = tr.Insert([]byte(k), valueHash(h, k))
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	entries := tr.Entries()
	if len(entries) != n {
		t.Fatalf("got %d leaves, want %d", len(entries), n)
	}
}

func TestBranchInvariantMinimumTwoChildren(t *testing.T) {
	h := digest.Blake2s256()
	tr := New(h)
	var err error
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		tr, err = tr.Insert([]byte(k), valueHash(h, k))
		if err != nil {
			t.Fatal(err)
		}
	}
	for _, k := range []string{"a", "b", "c"} {
		tr, err = tr.Delete([]byte(k))
		if err != nil {
			t.Fatal(err)
		}
	}
	assertBranchInvariant(t, tr.RootNode())
}

func assertBranchInvariant(t *testing.T, n Node) {
	t.Helper()
	branch, ok := n.(*Branch)
	if !ok {
		return
	}
	count := 0
	for _, c := range branch.Children {
		if c != nil {
			count++
			assertBranchInvariant(t, c)
		}
	}
	if count < 2 {
		t.Fatalf("branch with %d children, want >= 2", count)
	}
}

func TestDeleteThenReinsertReachesSameRoot(t *testing.T) {
	h := digest.Blake2s256()
	tr := New(h)
	keys := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	var err error
	for _, k := range keys {
		tr, err = tr.Insert([]byte(k), valueHash(h, k))
		if err != nil {
			t.Fatal(err)
		}
	}
	full := tr.Root()

	tr2, err := tr.Delete([]byte("gamma"))
	if err != nil {
		t.Fatal(err)
	}
	tr2, err = tr2.Insert([]byte("gamma"), valueHash(h, "gamma"))
	if err != nil {
		t.Fatal(err)
	}
	if !tr2.Root().Equal(full) {
		t.Fatalf("delete+reinsert root = %v, want %v", tr2.Root(), full)
	}
}
