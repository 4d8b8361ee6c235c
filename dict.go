// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package marisa implements a MARISA-style static string dictionary: a
// read-only trie built once from a weighted key set, mapping byte-string
// keys to dense integer ids and back, with exact, common-prefix and
// predictive lookup.
package marisa

import "bytes"

// Dict is a built, immutable string dictionary. The zero value is not
// usable; obtain one from Build.
type Dict struct {
	cfg    Config
	root   *level
	nkeys  int
	depths int
}

// Build constructs a Dict from a weighted key set. Keys may repeat;
// repeats collapse and their weights sum. An empty key is permitted and
// maps to the root's own terminal slot.
func Build(keys []Key, cfg Config) (*Dict, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(keys) > math32Max {
		return nil, &SizeError{What: "key count", Value: len(keys)}
	}

	items := dedupeKeys(keys)
	root, _ := buildLevel(cfg, 0, items)

	return &Dict{
		cfg:    cfg,
		root:   root,
		nkeys:  root.numKeys(),
		depths: countDepths(root),
	}, nil
}

const math32Max = 1<<32 - 1

func countDepths(lv *level) int {
	n := 1
	for lv.next != nil {
		lv = lv.next
		n++
	}
	return n
}

// NumKeys returns N, the number of distinct keys in the dictionary.
func (d *Dict) NumKeys() int { return d.nkeys }

// NumTries returns the number of recursive trie levels actually built
// (at most Config.NumTries, fewer if no level ever needed to recurse).
func (d *Dict) NumTries() int { return d.depths }

// Config returns the configuration the dictionary was built with.
func (d *Dict) Config() Config { return d.cfg }

// IOSize estimates the number of bytes the serialized persisted layout
// would occupy.
func (d *Dict) IOSize() int { return d.root.ioSize() }

// Lookup reports whether query is a key of the dictionary and, if so,
// its dense id.
func (d *Dict) Lookup(query []byte) (id int, ok bool) {
	a := NewAgent(query)
	if !d.root.lookup(a) {
		return 0, false
	}
	return d.root.terminalID(a.node), true
}

// ReverseLookup returns the key bytes for a given id. It fails with a
// RangeError if id is outside [0, NumKeys).
func (d *Dict) ReverseLookup(id int) ([]byte, error) {
	if id < 0 || id >= d.nkeys {
		return nil, &RangeError{What: "id", Value: id, Bound: d.nkeys}
	}
	return d.root.reconstructFromTerminal(d.root.terminalNode(id)), nil
}

// PrefixMatch is one result of CommonPrefixSearch: the id of a key that
// is a byte-prefix of the query, and how many query bytes it consumed.
type PrefixMatch struct {
	ID     int
	Length int
}

// CommonPrefixSearch yields, in increasing length order, every key that
// is a prefix of query.
func (d *Dict) CommonPrefixSearch(query []byte) func(yield func(PrefixMatch) bool) {
	return func(yield func(PrefixMatch) bool) {
		a := NewAgent(query)
		if d.root.isTerminal(a.node) {
			if !yield(PrefixMatch{ID: d.root.terminalID(a.node), Length: 0}) {
				return
			}
		}
		for a.pos < len(a.query) {
			if !d.root.findChild(a) {
				return
			}
			if d.root.isTerminal(a.node) {
				if !yield(PrefixMatch{ID: d.root.terminalID(a.node), Length: a.pos}) {
					return
				}
			}
		}
	}
}

// PredictiveMatch is one result of PredictiveSearch: a key id and its
// full key bytes.
type PredictiveMatch struct {
	ID  int
	Key []byte
}

// PredictiveSearch yields every key of which query is a prefix, in the
// order implied by Config.NodeOrder (descending weight, or ascending
// label, at every branch point).
func (d *Dict) PredictiveSearch(query []byte) func(yield func(PredictiveMatch) bool) {
	return func(yield func(PredictiveMatch) bool) {
		a := NewAgent(query)
		for a.pos < len(a.query) {
			node, pos := a.node, a.pos
			if !d.root.findChild(a) {
				if a.pos < len(a.query) {
					return
				}
				// The query ran out part-way through a linked edge below
				// node: walk from node and keep only keys extending query.
				a.node, a.pos = node, pos
				break
			}
		}

		prefix := append([]byte(nil), query[:a.pos]...)
		d.root.walkPredictive(a.node, prefix, func(node uint32, key []byte) bool {
			if !d.root.isTerminal(node) || !bytes.HasPrefix(key, query) {
				return true
			}
			return yield(PredictiveMatch{ID: d.root.terminalID(node), Key: key})
		})
	}
}
