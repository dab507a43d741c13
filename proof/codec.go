package proof

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/ashbury-labs/mpf/digest"
	"github.com/ashbury-labs/mpf/nibble"
)

// Encode serializes p: a varuint step count, each step as
// tag:u8 skip:varuint payload, followed by the terminal witness as
// its own tag:u8 payload. Nibble runs are packed two-to-a-byte
// (high-first, left-padded when odd) rather than one byte per nibble,
// a compact wire width distinct from the one-byte-per-nibble form used
// in hash preimages. A KindLeaf step's payload is
// nibble:u8 key:digest value:digest — the neighbor's full key digest,
// not a length-prefixed suffix.
func Encode(p Proof) []byte {
	var buf bytes.Buffer
	putUvarint(&buf, uint64(len(p.Steps)))
	for _, s := range p.Steps {
		buf.WriteByte(byte(s.Kind))
		putUvarint(&buf, uint64(s.Skip))
		switch s.Kind {
		case KindBranch:
			for _, d := range s.BranchNeighbors {
				buf.Write(d)
			}
		case KindFork:
			buf.WriteByte(s.Fork.Nibble)
			writePackedNibbles(&buf, s.Fork.Prefix)
			buf.Write(s.Fork.Root)
		case KindLeaf:
			buf.WriteByte(s.Leaf.Nibble)
			buf.Write(s.Leaf.KeyHash)
			buf.Write(s.Leaf.ValueHash)
		}
	}

	buf.WriteByte(byte(p.Witness.Kind))
	switch p.Witness.Kind {
	case WitnessPresent:
		buf.Write(p.Witness.ValueHash)
	case WitnessAbsentEmpty:
		// no payload
	case WitnessAbsentLeaf:
		writePackedNibbles(&buf, p.Witness.OtherSuffix)
		buf.Write(p.Witness.OtherValueHash)
	case WitnessAbsentBranch:
		writePackedNibbles(&buf, p.Witness.OtherPrefix)
		buf.Write(p.Witness.OtherRoot)
	}
	return buf.Bytes()
}

// Decode parses the format Encode produces. digestSize must match the
// Hasher the proof was built under: digests carry no self-describing
// length of their own on the wire.
func Decode(data []byte, digestSize int) (Proof, error) {
	r := bytes.NewReader(data)

	count, err := binary.ReadUvarint(r)
	if err != nil {
		return Proof{}, &DecodeError{Reason: "step count", Err: err}
	}

	steps := make([]Step, 0, count)
	for i := uint64(0); i < count; i++ {
		tagByte, err := r.ReadByte()
		if err != nil {
			return Proof{}, &DecodeError{Reason: "step tag", Err: err}
		}
		skip, err := binary.ReadUvarint(r)
		if err != nil {
			return Proof{}, &DecodeError{Reason: "step skip", Err: err}
		}
		step := Step{Skip: uint32(skip), Kind: Kind(tagByte)}

		switch step.Kind {
		case KindBranch:
			for j := 0; j < 4; j++ {
				d, err := readDigest(r, digestSize)
				if err != nil {
					return Proof{}, &DecodeError{Reason: "branch neighbor", Err: err}
				}
				step.BranchNeighbors[j] = d
			}
		case KindFork:
			nb, err := r.ReadByte()
			if err != nil {
				return Proof{}, &DecodeError{Reason: "fork nibble", Err: err}
			}
			prefix, err := readPackedNibbles(r)
			if err != nil {
				return Proof{}, &DecodeError{Reason: "fork prefix", Err: err}
			}
			root, err := readDigest(r, digestSize)
			if err != nil {
				return Proof{}, &DecodeError{Reason: "fork root", Err: err}
			}
			step.Fork = ForkNeighbor{Nibble: nb, Prefix: prefix, Root: root}
		case KindLeaf:
			nb, err := r.ReadByte()
			if err != nil {
				return Proof{}, &DecodeError{Reason: "leaf nibble", Err: err}
			}
			keyHash, err := readDigest(r, digestSize)
			if err != nil {
				return Proof{}, &DecodeError{Reason: "leaf key", Err: err}
			}
			value, err := readDigest(r, digestSize)
			if err != nil {
				return Proof{}, &DecodeError{Reason: "leaf value", Err: err}
			}
			step.Leaf = LeafNeighbor{Nibble: nb, KeyHash: keyHash, ValueHash: value}
		default:
			return Proof{}, &DecodeError{Reason: "unknown step tag"}
		}
		steps = append(steps, step)
	}

	wTag, err := r.ReadByte()
	if err != nil {
		return Proof{}, &DecodeError{Reason: "witness tag", Err: err}
	}
	w := Witness{Kind: WitnessKind(wTag)}
	switch w.Kind {
	case WitnessPresent:
		v, err := readDigest(r, digestSize)
		if err != nil {
			return Proof{}, &DecodeError{Reason: "witness value", Err: err}
		}
		w.ValueHash = v
	case WitnessAbsentEmpty:
		// no payload
	case WitnessAbsentLeaf:
		suffix, err := readPackedNibbles(r)
		if err != nil {
			return Proof{}, &DecodeError{Reason: "witness suffix", Err: err}
		}
		v, err := readDigest(r, digestSize)
		if err != nil {
			return Proof{}, &DecodeError{Reason: "witness value", Err: err}
		}
		w.OtherSuffix, w.OtherValueHash = suffix, v
	case WitnessAbsentBranch:
		prefix, err := readPackedNibbles(r)
		if err != nil {
			return Proof{}, &DecodeError{Reason: "witness prefix", Err: err}
		}
		root, err := readDigest(r, digestSize)
		if err != nil {
			return Proof{}, &DecodeError{Reason: "witness root", Err: err}
		}
		w.OtherPrefix, w.OtherRoot = prefix, root
	default:
		return Proof{}, &DecodeError{Reason: "unknown witness tag"}
	}

	return Proof{Steps: steps, Witness: w}, nil
}

func putUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	buf.Write(tmp[:n])
}

func writePackedNibbles(buf *bytes.Buffer, seq nibble.Path) {
	putUvarint(buf, uint64(len(seq)))
	buf.Write(nibble.PackNibbles(seq))
}

func readPackedNibbles(r *bytes.Reader) (nibble.Path, error) {
	count, err := binary.ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	packed := make([]byte, (int(count)+1)/2)
	if _, err := io.ReadFull(r, packed); err != nil {
		return nil, err
	}
	return nibble.UnpackNibbles(packed, int(count)), nil
}

func readDigest(r *bytes.Reader, size int) (digest.Digest, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return digest.Digest(buf), nil
}
