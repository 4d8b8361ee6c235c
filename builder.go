// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package marisa

import (
	"sort"

	"github.com/gaissmai/marisa/internal/bitvec"
	"github.com/gaissmai/marisa/internal/louds"
	"github.com/gaissmai/marisa/internal/tail"
)

// frag is one key still being threaded through the recursive builder: the
// bytes not yet consumed by an ancestor edge, its aggregate weight (for
// Weight node order), and the position it occupies in the items slice
// handed to the current buildLevel call (so the caller can learn which
// node ultimately terminates it).
type frag struct {
	bytes  []byte
	weight float64
	idx    int
}

// buildLevel constructs one trie level in BFS order from items, the set
// of byte strings (already in the orientation this level must be built
// on — forward for depth 0, the reversed residual label for depth 1, and
// the residual label as-is for every deeper level, so that ascending any
// level below the outermost yields bytes in the order its parent level
// consumes them) entering it. It returns the level together with terminalNodeOf, a
// slice parallel to items giving the node id at which each item
// terminates within this level.
func buildLevel(cfg Config, depth int, items []frag) (*level, []uint32) {
	type task struct {
		frags     []frag
		forced    bool
		forcedIdx int
	}

	terminalNodeOf := make([]uint32, len(items))

	lb := louds.NewBuilder()
	bases := []byte{0}
	var linkBits bitvec.Vector
	var termBits bitvec.Vector
	linkBits.Push(false) // node 0 (root) has no incoming edge

	var linkedItems []frag

	queue := []task{{frags: items}}
	var nodeID uint32

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		if t.forced {
			termBits.Push(true)
			terminalNodeOf[t.forcedIdx] = nodeID
			lb.PushDegree(0)
			nodeID++
			continue
		}

		groups := make(map[byte][]frag)
		terminalHere := false
		for _, f := range t.frags {
			if len(f.bytes) == 0 {
				terminalHere = true
				terminalNodeOf[f.idx] = nodeID
				continue
			}
			groups[f.bytes[0]] = append(groups[f.bytes[0]], f)
		}
		termBits.Push(terminalHere)

		order := orderGroupLabels(groups, cfg.NodeOrder)
		lb.PushDegree(len(order))

		for _, b := range order {
			g := groups[b]
			if len(g) == 1 && len(g[0].bytes) > 1 {
				// Singleton group with more than the distinguishing byte
				// left: compress the whole remaining suffix into one
				// linked edge instead of branching one byte at a time.
				linkBits.Push(true)
				bases = append(bases, b)
				linkedItems = append(linkedItems, frag{
					bytes:  g[0].bytes,
					weight: g[0].weight,
					idx:    len(linkedItems),
				})
				queue = append(queue, task{forced: true, forcedIdx: g[0].idx})
				continue
			}

			linkBits.Push(false)
			bases = append(bases, b)
			childFrags := make([]frag, len(g))
			for i, it := range g {
				childFrags[i] = frag{bytes: it.bytes[1:], weight: it.weight, idx: it.idx}
			}
			queue = append(queue, task{frags: childFrags})
		}

		nodeID++
	}

	loudsTree := lb.Build()
	termBits.Build(true, false, true)
	linkBits.Build(true, false, false)

	lv := &level{
		louds:    loudsTree,
		terminal: termBits,
		link:     linkBits,
		bases:    bases,
		numNodes: int(nodeID),
	}

	if len(linkedItems) > 0 {
		if depth >= cfg.NumTries-1 {
			entries := make([]tail.Entry, len(linkedItems))
			for i, li := range linkedItems {
				entries[i] = tail.Entry{ID: i, Bytes: li.bytes}
				if depth == 0 {
					entries[i].Bytes = NewReverseKey(li.bytes, uint32(i)).Bytes()
				}
			}
			tb := tail.NewBuilder(tailModeOf(cfg.TailMode))
			tl, offsets, _ := tb.Build(entries)
			lv.tail = tl
			lv.linkTarget = make([]uint32, len(offsets))
			for i, o := range offsets {
				lv.linkTarget[i] = uint32(o)
			}
		} else {
			reversed := make([]frag, len(linkedItems))
			for i, li := range linkedItems {
				reversed[i] = frag{bytes: li.bytes, weight: li.weight, idx: i}
				if depth == 0 {
					reversed[i].bytes = NewReverseKey(li.bytes, uint32(i)).Bytes()
				}
			}
			next, nextTerminalNodeOf := buildLevel(cfg, depth+1, reversed)
			lv.next = next
			lv.linkTarget = nextTerminalNodeOf
		}
	}

	lv.cache = buildLevelCache(cfg, lv)

	return lv, terminalNodeOf
}

// orderGroupLabels returns the distinct first bytes of groups, ordered
// per the configured sibling policy: ascending by label, or by
// descending aggregate weight (ties broken by label ascending).
func orderGroupLabels(groups map[byte][]frag, order NodeOrder) []byte {
	labels := make([]byte, 0, len(groups))
	for b := range groups {
		labels = append(labels, b)
	}
	sort.Slice(labels, func(i, j int) bool {
		return labels[i] < labels[j]
	})
	if order == NodeOrderLabel {
		return labels
	}

	weight := make(map[byte]float64, len(groups))
	for b, g := range groups {
		var w float64
		for _, f := range g {
			w += f.weight
		}
		weight[b] = w
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return weight[labels[i]] > weight[labels[j]]
	})
	return labels
}

// buildLevelCache fills a level's accelerator table by walking its
// finished LOUDS tree once, recording every (parent, label, child)
// triple and, for linked children, the link target alongside it.
func buildLevelCache(cfg Config, lv *level) *cacheTable {
	ct := newCacheTable(cfg.CacheLevel, lv.numNodes)
	if lv.numNodes <= 1 {
		return ct
	}

	queue := []uint32{0}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		if !lv.louds.HasChild(int(parent)) {
			continue
		}

		child := uint32(lv.louds.FirstChild(int(parent)))
		pos := lv.louds.ChildStart(int(parent))
		for {
			label := lv.bases[child]
			if lv.isLinked(child) {
				ct.putLinked(parent, label, child, lv.linkTargetFor(child))
			} else {
				ct.putDirect(parent, label, child)
			}
			queue = append(queue, child)

			sib, nextPos, ok := lv.louds.NextSibling(int(child), pos)
			if !ok {
				break
			}
			child, pos = uint32(sib), nextPos
		}
	}
	return ct
}

func tailModeOf(m TailMode) tail.Mode {
	if m == TailBinary {
		return tail.Binary
	}
	return tail.Text
}

// dedupeKeys sorts-by-nothing and merges duplicate byte strings,
// summing their weights, per the builder API contract ("duplicates
// collapse and their weights sum").
func dedupeKeys(keys []Key) []frag {
	sums := make(map[string]float64, len(keys))
	order := make([]string, 0, len(keys))
	for _, k := range keys {
		s := string(k.Bytes)
		if _, ok := sums[s]; !ok {
			order = append(order, s)
		}
		sums[s] += float64(k.Weight())
	}
	out := make([]frag, len(order))
	for i, s := range order {
		out[i] = frag{bytes: []byte(s), weight: sums[s], idx: i}
	}
	return out
}
