// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package marisa

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	lzf "github.com/zhuyie/golzf"

	"github.com/gaissmai/marisa/internal/bitvec"
	"github.com/gaissmai/marisa/internal/louds"
	"github.com/gaissmai/marisa/internal/tail"
)

// magic identifies the dictionary's raw persisted layout. It is written once,
// ahead of the flag word, and checked on read so a caller handed the
// wrong file gets a clear error instead of a garbled Dict.
var magic = [8]byte{'M', 'A', 'R', 'I', 'S', 'A', '0', '1'}

// Serialize writes the dictionary's persisted layout: an 8-byte magic,
// the 20-bit configuration flag word, the key and level
// count, then each trie level outer-first — its three bit vectors, its
// bases array, its link-target table, its cache table, and a tag byte
// saying what follows: the next level, the TAIL buffer and (in Binary
// mode) its end-flag bit vector, or nothing.
func (d *Dict) Serialize(w io.Writer) error {
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	if err := writeUint32(w, EncodeFlags(d.cfg)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(d.nkeys)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(d.depths)); err != nil {
		return err
	}
	return writeLevel(w, d.root)
}

// Deserialize reconstructs a Dict from the layout written by Serialize.
func Deserialize(r io.Reader) (*Dict, error) {
	var got [8]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return nil, err
	}
	if got != magic {
		return nil, errors.New("marisa: not a marisa-serialized dictionary")
	}

	flags, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	cfg, err := DecodeFlags(flags)
	if err != nil {
		return nil, err
	}

	nkeys, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	depths, err := readUint32(r)
	if err != nil {
		return nil, err
	}

	root, err := readLevel(r, int(depths))
	if err != nil {
		return nil, err
	}

	return &Dict{cfg: cfg, root: root, nkeys: int(nkeys), depths: int(depths)}, nil
}

// SerializeCompressed writes the same byte stream as Serialize, passed
// through github.com/zhuyie/golzf's LZF compressor, length-prefixed so
// DeserializeCompressed knows how much compressed data to read. This
// mirrors the raw-vs-compressed choice _examples/flonle-diy-redis's
// rdb.go makes for its own on-disk payload.
func (d *Dict) SerializeCompressed(w io.Writer) error {
	var raw bytes.Buffer
	if err := d.Serialize(&raw); err != nil {
		return err
	}

	in := raw.Bytes()
	out := make([]byte, len(in))
	n, err := lzf.Compress(in, out)
	if err != nil {
		// Incompressible input: liblzf-style compressors report this
		// rather than emit a larger-than-input block. Store raw, marked
		// by a zero compressed length.
		if err := writeUint32(w, 0); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(in))); err != nil {
			return err
		}
		_, err = w.Write(in)
		return err
	}

	if err := writeUint32(w, uint32(n)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(in))); err != nil {
		return err
	}
	_, err = w.Write(out[:n])
	return err
}

// DeserializeCompressed is the inverse of SerializeCompressed.
func DeserializeCompressed(r io.Reader) (*Dict, error) {
	compLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	rawLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}

	if compLen == 0 {
		raw := make([]byte, rawLen)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}
		return Deserialize(bytes.NewReader(raw))
	}

	comp := make([]byte, compLen)
	if _, err := io.ReadFull(r, comp); err != nil {
		return nil, err
	}
	raw := make([]byte, rawLen)
	n, err := lzf.Decompress(comp, raw)
	if err != nil {
		return nil, fmt.Errorf("marisa: decompressing persisted layout: %w", err)
	}
	return Deserialize(bytes.NewReader(raw[:n]))
}

// writeLevel writes one level's bit vectors, bases, cache table, and
// (recursively) its next level or TAIL.
func writeLevel(w io.Writer, lv *level) error {
	if err := writeVector(w, lv.louds.Bits()); err != nil {
		return err
	}
	if err := writeBitvecField(w, &lv.terminal); err != nil {
		return err
	}
	if err := writeBitvecField(w, &lv.link); err != nil {
		return err
	}
	if err := writeBytes(w, lv.bases); err != nil {
		return err
	}
	if err := writeUint32Slice(w, lv.linkTarget); err != nil {
		return err
	}
	if err := writeCache(w, lv.cache); err != nil {
		return err
	}

	switch {
	case lv.next != nil:
		if err := writeUint8(w, 1); err != nil {
			return err
		}
		return writeLevel(w, lv.next)
	case lv.tail != nil:
		if err := writeUint8(w, 2); err != nil {
			return err
		}
		return writeTail(w, lv.tail)
	default:
		return writeUint8(w, 0)
	}
}

// readLevel is the inverse of writeLevel. remainingDepth is only passed
// down, decremented, and never checked; the actual chain length is
// driven by the per-level continuation byte written alongside it.
func readLevel(r io.Reader, remainingDepth int) (*level, error) {
	loudsBits, err := readVector(r)
	if err != nil {
		return nil, err
	}
	loudsBits.Build(true, true, true)

	termBits, err := readVector(r)
	if err != nil {
		return nil, err
	}
	termBits.Build(true, false, true)

	linkBits, err := readVector(r)
	if err != nil {
		return nil, err
	}
	linkBits.Build(true, false, false)

	bases, err := readBytes(r)
	if err != nil {
		return nil, err
	}
	linkTarget, err := readUint32Slice(r)
	if err != nil {
		return nil, err
	}
	ct, err := readCache(r)
	if err != nil {
		return nil, err
	}

	loudsTree := louds.FromBits(*loudsBits)
	lv := &level{
		louds:      loudsTree,
		terminal:   *termBits,
		link:       *linkBits,
		bases:      bases,
		linkTarget: linkTarget,
		cache:      ct,
		numNodes:   loudsTree.NumNodes(),
	}

	kind, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	switch kind {
	case 1:
		next, err := readLevel(r, remainingDepth-1)
		if err != nil {
			return nil, err
		}
		lv.next = next
	case 2:
		tl, err := readTail(r)
		if err != nil {
			return nil, err
		}
		lv.tail = tl
	case 0:
		// leaf level with no links at all.
	default:
		return nil, &CodeError{Invariant: fmt.Sprintf("unknown level continuation tag %d", kind)}
	}
	return lv, nil
}

func writeTail(w io.Writer, t *tail.Tail) error {
	if err := writeUint8(w, uint8(t.Mode())); err != nil {
		return err
	}
	if err := writeBytes(w, t.Buf()); err != nil {
		return err
	}
	if t.Mode() == tail.Binary {
		return writeBitvecField(w, t.EndFlags())
	}
	return nil
}

func readTail(r io.Reader) (*tail.Tail, error) {
	m, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	buf, err := readBytes(r)
	if err != nil {
		return nil, err
	}
	mode := tail.Mode(m)
	var endFlags bitvec.Vector
	if mode == tail.Binary {
		v, err := readVector(r)
		if err != nil {
			return nil, err
		}
		endFlags = *v
	}
	return tail.FromParts(mode, buf, endFlags), nil
}

func writeCache(w io.Writer, ct *cacheTable) error {
	if err := writeUint32(w, ct.mask); err != nil {
		return err
	}
	entries := ct.rawEntries()
	if err := writeUint32(w, uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeUint32(w, e.parent); err != nil {
			return err
		}
		if err := writeUint32(w, e.child); err != nil {
			return err
		}
		if err := writeUint32(w, e.link); err != nil {
			return err
		}
		if err := writeUint16(w, e.extra); err != nil {
			return err
		}
		if err := writeUint8(w, e.label); err != nil {
			return err
		}
		if err := writeBool(w, e.valid); err != nil {
			return err
		}
	}
	return nil
}

func readCache(r io.Reader) (*cacheTable, error) {
	mask, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	entries := make([]cacheEntry, n)
	for i := range entries {
		parent, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		child, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		link, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		extra, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		label, err := readUint8(r)
		if err != nil {
			return nil, err
		}
		valid, err := readBool(r)
		if err != nil {
			return nil, err
		}
		entries[i] = cacheEntry{parent: parent, child: child, link: link, extra: extra, label: label, valid: valid}
	}
	return cacheTableFromParts(entries, mask), nil
}

// writeVector / readVector (de)serialize a bitvec.Vector as its bit
// count followed by its length-prefixed underlying words.
func writeVector(w io.Writer, v *bitvec.Vector) error {
	if err := writeUint32(w, uint32(v.Len())); err != nil {
		return err
	}
	return writeUint64Slice(w, v.Words())
}

func readVector(r io.Reader) (*bitvec.Vector, error) {
	nbits, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	words, err := readUint64Slice(r)
	if err != nil {
		return nil, err
	}
	return bitvec.FromWords(words, int(nbits)), nil
}

// writeBitvecField writes a Vector stored by value (terminal_flags,
// link_flags, the TAIL's end-flag vector).
func writeBitvecField(w io.Writer, v *bitvec.Vector) error { return writeVector(w, v) }

func writeBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func writeUint32Slice(w io.Writer, s []uint32) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, s)
}

func readUint32Slice(r io.Reader) ([]uint32, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	s := make([]uint32, n)
	if err := binary.Read(r, binary.LittleEndian, s); err != nil {
		return nil, err
	}
	return s, nil
}

func writeUint64Slice(w io.Writer, s []uint64) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, s)
}

func readUint64Slice(r io.Reader) ([]uint64, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	s := make([]uint64, n)
	if err := binary.Read(r, binary.LittleEndian, s); err != nil {
		return nil, err
	}
	return s, nil
}

func writeUint8(w io.Writer, v uint8) error   { return binary.Write(w, binary.LittleEndian, v) }
func writeUint16(w io.Writer, v uint16) error { return binary.Write(w, binary.LittleEndian, v) }
func writeUint32(w io.Writer, v uint32) error { return binary.Write(w, binary.LittleEndian, v) }

func writeBool(w io.Writer, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return writeUint8(w, b)
}

func readUint8(r io.Reader) (uint8, error) {
	var v uint8
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readUint16(r io.Reader) (uint16, error) {
	var v uint16
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func readBool(r io.Reader) (bool, error) {
	v, err := readUint8(r)
	return v != 0, err
}
