// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package marisa

import "math"

// Key is an input record: an immutable byte slice and a 32-bit Aux
// field. Build reads Aux only as the IEEE-754 weight and never writes it
// back; SetTerminalNode/TerminalNode reuse the same field to hold a
// terminal node id instead. A single 32-bit field serves both phases
// rather than carrying a tagged union.
type Key struct {
	Bytes []byte
	Aux   uint32
}

// Weight returns Aux reinterpreted as the pre-build IEEE-754 weight.
func (k Key) Weight() float32 {
	return math.Float32frombits(k.Aux)
}

// SetWeight stores w as Aux, in the pre-build phase.
func (k *Key) SetWeight(w float32) {
	k.Aux = math.Float32bits(w)
}

// TerminalNode returns Aux reinterpreted as the post-build terminal node
// id.
func (k Key) TerminalNode() uint32 {
	return k.Aux
}

// SetTerminalNode stores id as Aux, in the post-build phase.
func (k *Key) SetTerminalNode(id uint32) {
	k.Aux = id
}

// orientation is the capability set a byte sequence must offer so
// builder code can work uniformly over forward and reverse indexing.
// Only two implementations exist (forward, reverse), chosen per build
// phase, so a tagged variant is used instead of a runtime-dispatched
// interface.
type orientation bool

const (
	forward orientation = false
	reverse orientation = true
)

// orientedView exposes a byte slice either in forward order or read from
// the tail end, without materializing a reversed copy. It backs the
// ReverseKey behavior the builder uses when the outermost level hands a
// linked edge's label to the next level or to its TAIL (see
// internal/tail).
type orientedView struct {
	bytes []byte
	or    orientation
}

func newView(b []byte, or orientation) orientedView {
	return orientedView{bytes: b, or: or}
}

// At returns the i-th byte in this view's orientation.
func (v orientedView) At(i int) byte {
	if v.or == forward {
		return v.bytes[i]
	}
	return v.bytes[len(v.bytes)-1-i]
}

// Len returns the number of bytes in the view.
func (v orientedView) Len() int { return len(v.bytes) }

// Sub returns the subslice [pos, pos+n) in this view's orientation,
// materialized in that same orientation.
func (v orientedView) Sub(pos, n int) []byte {
	out := make([]byte, n)
	for i := range n {
		out[i] = v.At(pos + i)
	}
	return out
}

// ReverseKey is a Key viewed and sub-sliced from the tail end. It shares
// the underlying bytes with its Key; no copy is made until Sub is
// called.
type ReverseKey struct {
	view orientedView
	ID   uint32
}

// NewReverseKey wraps a byte slice for reverse indexing.
func NewReverseKey(b []byte, id uint32) ReverseKey {
	return ReverseKey{view: newView(b, reverse), ID: id}
}

// At returns the i-th byte counting from the end of the key.
func (r ReverseKey) At(i int) byte { return r.view.At(i) }

// Len returns the key length.
func (r ReverseKey) Len() int { return r.view.Len() }

// Bytes materializes the key read from the tail end, i.e. the original
// bytes in reverse. This is the orientation internal/tail's Builder
// expects its Entry.Bytes in (see that package's doc comment).
func (r ReverseKey) Bytes() []byte { return r.view.Sub(0, r.view.Len()) }
