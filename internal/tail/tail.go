// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package tail implements the TAIL: a flat, deduplicated byte buffer
// holding the suffixes of linked edges that terminate at the deepest
// trie level.
//
// Build takes its Entry.Bytes in reverse-key orientation (each byte
// slice already reversed relative to the true, forward-reading suffix
// it represents — the same orientation used to insert linked labels
// into the deepest trie). Sorting and the prefix check that drives
// dedup both operate on this reversed view, where "current is a prefix
// of previous" is equivalent to "current, read forwards, is a suffix of
// previous, read forwards" — exactly the sharing relationship a TAIL
// wants. Build then writes each kept entry to buf in TRUE forward
// order, so Restore and Match both read buf directly with no further
// reversal.
package tail

import (
	"bytes"
	"sort"

	"github.com/gaissmai/marisa/internal/bitvec"
)

// Mode selects how entries are delimited in the buffer.
type Mode int

const (
	// Text delimits entries with a trailing zero byte. Requires inputs
	// free of zero bytes.
	Text Mode = iota
	// Binary delimits entries with an explicit end-bit vector, working
	// on arbitrary byte content.
	Binary
)

func (m Mode) String() string {
	if m == Binary {
		return "binary"
	}
	return "text"
}

// Entry is one suffix to be stored, carrying the build-time id it will
// be restored under.
type Entry struct {
	ID    int
	Bytes []byte
}

// Tail is a sealed, queryable suffix buffer.
type Tail struct {
	mode     Mode
	buf      []byte
	endFlags bitvec.Vector // populated only in Binary mode
}

// Mode reports the effective storage mode.
func (t *Tail) Mode() Mode { return t.mode }

// Size returns the number of bytes occupied by the buffer (for io_size
// accounting).
func (t *Tail) Size() int { return len(t.buf) }

// Buf exposes the raw suffix buffer, for serialization.
func (t *Tail) Buf() []byte { return t.buf }

// EndFlags exposes the binary-mode end-bit vector, for serialization.
// It is the zero value in Text mode.
func (t *Tail) EndFlags() *bitvec.Vector { return &t.endFlags }

// FromParts reconstructs a sealed Tail from its persisted components.
func FromParts(mode Mode, buf []byte, endFlags bitvec.Vector) *Tail {
	return &Tail{mode: mode, buf: buf, endFlags: endFlags}
}

// Restore walks the buffer starting at offset and returns the suffix
// bytes in true forward reading order, terminated according to the
// tail's mode. dst, if it has spare capacity, is reused to avoid an
// allocation.
func (t *Tail) Restore(offset int, dst []byte) []byte {
	out := dst[:0]

	switch t.mode {
	case Text:
		for i := offset; ; i++ {
			if i >= len(t.buf) {
				panic(&CodeError{Invariant: "Text suffix ran past buffer without a terminator"})
			}
			c := t.buf[i]
			if c == 0 {
				return out
			}
			out = append(out, c)
		}
	default: // Binary
		for i := offset; ; i++ {
			if i >= len(t.buf) {
				panic(&CodeError{Invariant: "Binary suffix ran past buffer without an end flag"})
			}
			c := t.buf[i]
			out = append(out, c)
			if t.endFlags.At(i) {
				return out
			}
		}
	}
}

// Match compares the suffix stored at offset against query starting at
// *queryPos, advancing *queryPos past every byte that matches. It
// reports true the instant the stored suffix's terminator is reached
// (the whole suffix matched a prefix of the remaining query), and false
// either on a byte mismatch or on exhausting the query before the
// terminator is reached. On failure *queryPos is left exactly where the
// mismatch (or exhaustion) occurred.
func (t *Tail) Match(query []byte, queryPos *int, offset int) bool {
	if len(t.buf) == 0 {
		panic(&StateError{Op: "Match"})
	}

	qp, bi := *queryPos, offset
	for {
		if bi >= len(t.buf) {
			panic(&CodeError{Invariant: "tail suffix ran past buffer without a terminator"})
		}
		if qp >= len(query) || t.buf[bi] != query[qp] {
			*queryPos = qp
			return false
		}
		qp++

		var atEnd bool
		if t.mode == Text {
			atEnd = bi+1 >= len(t.buf) || t.buf[bi+1] == 0
		} else {
			atEnd = t.endFlags.At(bi)
		}
		bi++

		if atEnd {
			*queryPos = qp
			return true
		}
	}
}

// Builder accumulates suffix entries and seals them into a Tail.
type Builder struct {
	mode Mode
}

// NewBuilder starts a tail build in the requested mode.
func NewBuilder(mode Mode) *Builder {
	return &Builder{mode: mode}
}

// Build sorts and deduplicates entries by shared suffix and returns the
// sealed Tail together with a per-id offset table (indexed by Entry.ID)
// and the effective mode actually used (Text silently upgrades to
// Binary the moment any entry contains a zero byte).
func (b *Builder) Build(entries []Entry) (*Tail, []int, Mode) {
	mode := b.mode
	if mode == Text {
		for _, e := range entries {
			if bytes.IndexByte(e.Bytes, 0) >= 0 {
				mode = Binary
				break
			}
		}
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].Bytes, sorted[j].Bytes) < 0
	})

	offsets := make([]int, len(entries))

	var (
		buf      []byte
		endFlags bitvec.Vector
		prev     []byte
		prevOff  = -1
	)

	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]

		if prevOff >= 0 && isPrefix(e.Bytes, prev) {
			offsets[e.ID] = prevOff + (len(prev) - len(e.Bytes))
			continue
		}

		newOffset := len(buf)
		for k := len(e.Bytes) - 1; k >= 0; k-- {
			buf = append(buf, e.Bytes[k])
			if mode == Binary {
				endFlags.Push(false)
			}
		}

		switch mode {
		case Text:
			buf = append(buf, 0)
		default: // Binary
			if len(e.Bytes) > 0 {
				endFlags.Set(endFlags.Len()-1, true)
			}
		}

		offsets[e.ID] = newOffset
		prev = e.Bytes
		prevOff = newOffset
	}

	return &Tail{mode: mode, buf: buf, endFlags: endFlags}, offsets, mode
}

// isPrefix reports whether a is a byte-prefix of b.
func isPrefix(a, b []byte) bool {
	return len(a) <= len(b) && bytes.Equal(a, b[:len(a)])
}
