package nibble

import (
	"bytes"
	"testing"

	"github.com/ashbury-labs/mpf/digest"
)

func TestOfLengthIsTwiceDigestWidth(t *testing.T) {
	h := digest.Blake2s256()
	p := Of(h, []byte("apple"))
	if len(p) != 2*h.Size() {
		t.Fatalf("path length = %d, want %d", len(p), 2*h.Size())
	}
	for _, n := range p {
		if n > 15 {
			t.Fatalf("nibble out of range: %d", n)
		}
	}
}

func TestExpandHighNibbleFirst(t *testing.T) {
	p := Expand([]byte{0xAB, 0x0F})
	want := Path{0x0A, 0x0B, 0x00, 0x0F}
	if !bytes.Equal(p, want) {
		t.Fatalf("Expand = %v, want %v", p, want)
	}
}

func TestCommonPrefixLen(t *testing.T) {
	cases := []struct {
		a, b Path
		want int
	}{
		{Path{1, 2, 3}, Path{1, 2, 3}, 3},
		{Path{1, 2, 3}, Path{1, 2, 4}, 2},
		{Path{1, 2, 3}, Path{9}, 0},
		{Path{}, Path{1}, 0},
		{Path{1, 2}, Path{1, 2, 3, 4}, 2},
	}
	for _, c := range cases {
		if got := CommonPrefixLen(c.a, c.b); got != c.want {
			t.Errorf("CommonPrefixLen(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestEncodeNibblesEmpty(t *testing.T) {
	if got := EncodeNibbles(Path{}); len(got) != 0 {
		t.Fatalf("EncodeNibbles(empty) = %v, want zero bytes", got)
	}
}

func TestEncodeNibblesOneBytePerNibble(t *testing.T) {
	got := EncodeNibbles(Path{0x0A, 0x03})
	want := []byte{0x0A, 0x03}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeNibbles = %v, want %v", got, want)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	for _, seq := range []Path{
		{},
		{1},
		{1, 2},
		{1, 2, 3},
		{0xF, 0x0, 0xA, 0x1, 0x2},
	} {
		packed := PackNibbles(seq)
		back := UnpackNibbles(packed, len(seq))
		if !bytes.Equal(back, seq) {
			t.Errorf("round trip of %v => %v => %v", seq, packed, back)
		}
	}
}

func TestPackNibblesOddLeftPads(t *testing.T) {
	got := PackNibbles(Path{0xA, 0xB, 0xC})
	want := []byte{0x0A, 0xBC}
	if !bytes.Equal(got, want) {
		t.Fatalf("PackNibbles(odd) = %v, want %v", got, want)
	}
}

func TestHeadTailOddEven(t *testing.T) {
	headOdd, tailOdd := HeadTail(Path{0x5, 0xA, 0xB})
	if !bytes.Equal(headOdd, []byte{0x00, 0x05}) {
		t.Fatalf("odd head = %v", headOdd)
	}
	if !bytes.Equal(tailOdd, PackNibbles(Path{0xA, 0xB})) {
		t.Fatalf("odd tail = %v", tailOdd)
	}

	headEven, tailEven := HeadTail(Path{0xA, 0xB})
	if !bytes.Equal(headEven, []byte{0xFF}) {
		t.Fatalf("even head = %v", headEven)
	}
	if !bytes.Equal(tailEven, PackNibbles(Path{0xA, 0xB})) {
		t.Fatalf("even tail = %v", tailEven)
	}
}
