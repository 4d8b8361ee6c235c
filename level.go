// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package marisa

import (
	"github.com/gaissmai/marisa/internal/bitvec"
	"github.com/gaissmai/marisa/internal/louds"
	"github.com/gaissmai/marisa/internal/tail"
)

// level is one layer of the recursive trie: a LOUDS tree shape plus, per
// node, a label byte, a terminal flag and a link flag, a lookup cache,
// and either a next level (for linked edges that recurse) or a TAIL
// (for linked edges at the deepest level).
//
// Exactly one of next or tail is non-nil once a level owns at least one
// linked edge; both are nil for a level whose keys never needed path
// compression at all (every edge is direct).
type level struct {
	louds    *louds.Tree
	terminal bitvec.Vector // rank1 + select1 built
	link     bitvec.Vector // rank1 built

	// bases[v] is the single label byte of the edge into v, for both
	// direct and linked edges: the slow matching path (find_child,
	// matchAscend) never consults it for a linked v, but the cache
	// builder does, to key the (parent, label) slot correctly.
	bases []byte

	cache *cacheTable

	next *level    // recursion into a deeper trie level, or nil
	tail *tail.Tail // present only at the deepest level, or nil

	// linkTarget, indexed by rank1(link, v), is either the terminal node
	// id in next (when next != nil) or the byte offset into tail.
	linkTarget []uint32

	numNodes int
}

func (lv *level) isLinked(node uint32) bool { return lv.link.At(int(node)) }

func (lv *level) linkRank(node uint32) int { return lv.link.Rank1(int(node)) }

func (lv *level) linkTargetFor(node uint32) uint32 { return lv.linkTarget[lv.linkRank(node)] }

func (lv *level) isTerminal(node uint32) bool { return lv.terminal.At(int(node)) }

// terminalID returns the dense, zero-based key id of a terminal node.
func (lv *level) terminalID(node uint32) int { return lv.terminal.Rank1(int(node)) }

// terminalNode is the inverse of terminalID: the node holding key id.
func (lv *level) terminalNode(id int) uint32 { return uint32(lv.terminal.Select1(id)) }

// numKeys is the number of terminal nodes in this level, i.e. N for the
// outermost level.
func (lv *level) numKeys() int { return lv.terminal.Rank1(lv.louds.NumNodes()) }

// ioSize estimates the on-disk footprint of this level and everything it
// owns, in bytes: the three bit vectors (rounded to whole words), the
// bases array, the cache table, and (recursively) the next level or the
// TAIL buffer.
func (lv *level) ioSize() int {
	size := wordBytes(lv.louds.Len()) + wordBytes(lv.terminal.Len()) + wordBytes(lv.link.Len())
	size += len(lv.bases)
	size += len(lv.cache.entries) * cacheEntrySize
	size += len(lv.linkTarget) * 4
	switch {
	case lv.next != nil:
		size += lv.next.ioSize()
	case lv.tail != nil:
		size += lv.tail.Size()
	}
	return size
}

const cacheEntrySize = 4 + 4 + 4 + 2 + 1 + 1 // parent,child,link,extra,label,valid (packed estimate)

func wordBytes(nbits int) int {
	return ((nbits + 63) / 64) * 8
}

// restoreAscend reconstructs, in true forward order, the bytes encoded
// by the chain of edges from node up to (but not including) the root of
// this level. It is used both as the final step of reverse lookup, once
// control has descended into a linked level, and recursively by a
// shallower level resolving one of its own links.
//
// Every level below the outermost is built on input oriented so that
// ascending it visits bytes in the order they must be emitted (see
// buildLevel); no reversal is needed here, unlike at the outermost level.
func (lv *level) restoreAscend(node uint32, out []byte) []byte {
	for {
		if lv.isLinked(node) {
			target := lv.linkTargetFor(node)
			if lv.next != nil {
				out = lv.next.restoreAscend(target, out)
			} else {
				out = append(out, lv.tail.Restore(int(target), nil)...)
			}
		} else {
			out = append(out, lv.bases[node])
		}
		parent := uint32(lv.louds.Parent(int(node)))
		if parent == 0 {
			return out
		}
		node = parent
	}
}

// matchAscend walks this level's tree upward from node, comparing its
// edges (or, for a linked edge, the bytes of the deeper level or TAIL it
// points to) against query starting at *pos, advancing *pos as bytes
// match. It reports whether the entire chain of edges up to the root
// matched some prefix of query[*pos:].
func (lv *level) matchAscend(query []byte, pos *int, node uint32) bool {
	for {
		if ce, ok := lv.cache.lookupByChild(node); ok {
			if ce.isLinked() {
				if !lv.matchLink(query, pos, ce.link) {
					return false
				}
			} else {
				if *pos >= len(query) || query[*pos] != ce.label {
					return false
				}
				*pos++
			}
		} else if lv.isLinked(node) {
			if !lv.matchLink(query, pos, lv.linkTargetFor(node)) {
				return false
			}
		} else {
			if *pos >= len(query) || query[*pos] != lv.bases[node] {
				return false
			}
			*pos++
		}

		parent := uint32(lv.louds.Parent(int(node)))
		if parent == 0 {
			return true
		}
		node = parent
	}
}

// matchLink dispatches a linked edge's target to the next level's
// ascending matcher, or to the TAIL's forward byte-compare.
func (lv *level) matchLink(query []byte, pos *int, target uint32) bool {
	if lv.next != nil {
		return lv.next.matchAscend(query, pos, target)
	}
	return lv.tail.Match(query, pos, int(target))
}
