// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package louds implements the Level-Order Unary Degree Sequence tree
// shape encoding: a bit vector of 2n+1 bits where a fencepost edge ("1")
// and its terminator ("0") precede, for each of the n real nodes visited
// in BFS order starting at the root, a unary run of 1-bits equal to the
// node's child count followed by a single 0-bit. The fencepost gives the
// root the same "one incoming edge" shape as every other node, which is
// what lets Select0/Select1 address a node's own run and its parent in
// constant time.
//
// All derived operations (child, parent, sibling, degree) run in
// constant time on top of the underlying bitvec.Vector rank/select
// index.
package louds

import "github.com/gaissmai/marisa/internal/bitvec"

// Tree is a read-only view over a built LOUDS bit vector.
type Tree struct {
	bits bitvec.Vector
}

// Builder accumulates the unary degree sequence during a single BFS pass
// over the nodes of one trie level.
type Builder struct {
	bits bitvec.Vector
}

// NewBuilder starts a LOUDS sequence with its fencepost bit already
// written: a single virtual edge ("1") into the real root followed by
// its terminator ("0"). The root's own unary run is then pushed first
// via PushDegree, exactly like every other node. The fencepost is what
// makes Select0(v)+1 land on node v's own run and Select1(u)-u-1 land
// on u's parent; without it those identities are off by one.
func NewBuilder() *Builder {
	b := &Builder{}
	b.bits.Push(true)
	b.bits.Push(false)
	return b
}

// PushDegree appends the unary run for one node: `degree` 1-bits followed
// by a single 0-bit. Nodes must be pushed in BFS (level) order.
func (b *Builder) PushDegree(degree int) {
	for range degree {
		b.bits.Push(true)
	}
	b.bits.Push(false)
}

// Build finalizes the sequence into a queryable Tree.
func (b *Builder) Build() *Tree {
	b.bits.Build(true, true, true)
	return &Tree{bits: b.bits}
}

// NumNodes returns n, the number of real nodes encoded (the number of
// 0-bits, less the fencepost's own terminator).
func (t *Tree) NumNodes() int {
	return t.bits.Len() - t.bits.Rank1(t.bits.Len()) - 1
}

// ChildStart returns the position in the bit vector of node v's first
// child slot.
func (t *Tree) ChildStart(v int) int {
	return t.bits.Select0(v) + 1
}

// HasChild reports whether node v has at least one child.
func (t *Tree) HasChild(v int) bool {
	p := t.ChildStart(v)
	return p < t.bits.Len() && t.bits.At(p)
}

// FirstChild returns the node id of v's first child. Only valid when
// HasChild(v) is true.
func (t *Tree) FirstChild(v int) int {
	return t.ChildStart(v) - v - 1
}

// NextSibling returns the node id of the sibling following u, given the
// bit-vector position p of u's own incoming edge (i.e. p = Select1(u)
// for the outermost call, or tracked incrementally by the caller while
// scanning). ok is false when u is the last sibling in its run.
func (t *Tree) NextSibling(u, p int) (sibling, nextPos int, ok bool) {
	if p+1 < t.bits.Len() && t.bits.At(p+1) {
		return u + 1, p + 1, true
	}
	return 0, 0, false
}

// Parent returns the node id of u's parent. u must not be the root (node
// 0). This is also the formula the query engine's ascending matcher uses
// to walk from a child back toward the root of one trie level one step
// at a time, without a full Rank0/Select0 round trip.
func (t *Tree) Parent(u int) int {
	return t.bits.Select1(u) - u - 1
}

// Degree returns the number of children of node v.
func (t *Tree) Degree(v int) int {
	if !t.HasChild(v) {
		return 0
	}
	p := t.ChildStart(v)
	n := 0
	for p < t.bits.Len() && t.bits.At(p) {
		n++
		p++
	}
	return n
}

// At exposes the raw bit at position i, used by the query engine's
// manual sibling-scan loop.
func (t *Tree) At(i int) bool { return t.bits.At(i) }

// Len returns the length of the underlying bit vector (2n+1).
func (t *Tree) Len() int { return t.bits.Len() }

// Bits exposes the underlying bit vector, for serialization.
func (t *Tree) Bits() *bitvec.Vector { return &t.bits }

// FromBits wraps an already-built bit vector (Rank1, Select0 and Select1
// all enabled) as a Tree, used when reconstructing a persisted level.
func FromBits(v bitvec.Vector) *Tree { return &Tree{bits: v} }
