// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package marisa

// Agent carries the mutable state threaded through one query: the query
// bytes, a cursor into them, and the current node at the outermost
// level. A single Agent must not be shared between concurrently running
// queries, but distinct Agents may run concurrently against the same
// Dict without synchronization.
type Agent struct {
	query []byte
	pos   int
	node  uint32
}

// NewAgent starts an agent at the root, ready to consume query from the
// beginning.
func NewAgent(query []byte) *Agent {
	return &Agent{query: query}
}

// lookup drives the outermost level's find_child loop to completion and
// reports whether query names a key.
func (lv *level) lookup(a *Agent) bool {
	for a.pos < len(a.query) {
		if !lv.findChild(a) {
			return false
		}
	}
	return lv.isTerminal(a.node)
}

// findChild advances the agent by one edge of the outermost level,
// either consuming a single direct-label byte or fully resolving a
// linked edge via the next level or TAIL. It is the only operation that
// descends a level top-down; every deeper level is entered exactly once,
// at a known node, via matchAscend.
func (lv *level) findChild(a *Agent) bool {
	if ce, ok := lv.cache.lookup(a.node, a.query[a.pos]); ok {
		if ce.isLinked() {
			if !lv.matchLink(a.query, &a.pos, ce.link) {
				return false
			}
		} else {
			a.pos++
		}
		a.node = ce.child
		return true
	}

	loudsPos := lv.louds.ChildStart(int(a.node))
	if !lv.louds.At(loudsPos) {
		return false
	}
	node := uint32(loudsPos) - a.node - 1

	for {
		if lv.isLinked(node) {
			prevPos := a.pos
			if lv.matchLink(a.query, &a.pos, lv.linkTargetFor(node)) {
				a.node = node
				return true
			}
			if a.pos != prevPos {
				return false
			}
		} else if lv.bases[node] == a.query[a.pos] {
			a.pos++
			a.node = node
			return true
		}

		node++
		loudsPos++
		if !lv.louds.At(loudsPos) {
			return false
		}
	}
}

// reconstructFromTerminal rebuilds the forward key bytes for a terminal
// node of the outermost level. Because the outermost level is built
// forward (root-to-leaf spells a key's bytes in order), ascending it
// visits bytes in reverse order; the pieces collected along the way —
// single direct bytes, or whole forward-ordered chunks resolved through
// a link — are therefore assembled back-to-front, not their own bytes
// reversed.
func (lv *level) reconstructFromTerminal(node uint32) []byte {
	var pieces [][]byte
	for node != 0 {
		if lv.isLinked(node) {
			target := lv.linkTargetFor(node)
			var chunk []byte
			if lv.next != nil {
				chunk = lv.next.restoreAscend(target, nil)
			} else {
				chunk = lv.tail.Restore(int(target), nil)
			}
			pieces = append(pieces, chunk)
		} else {
			pieces = append(pieces, []byte{lv.bases[node]})
		}
		node = uint32(lv.louds.Parent(int(node)))
	}

	total := 0
	for _, p := range pieces {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for i := len(pieces) - 1; i >= 0; i-- {
		out = append(out, pieces[i]...)
	}
	return out
}

// walkPredictive performs a depth-first traversal of every node
// beneath (and including) start, invoking visit with each node's
// reconstructed key-so-far. visit returns false to stop the whole
// traversal early. Sibling order at each branch follows the level's own
// LOUDS child order, which was built per Config.NodeOrder.
func (lv *level) walkPredictive(start uint32, prefix []byte, visit func(node uint32, key []byte) bool) bool {
	if !visit(start, prefix) {
		return false
	}
	if !lv.louds.HasChild(int(start)) {
		return true
	}

	child := uint32(lv.louds.FirstChild(int(start)))
	pos := lv.louds.ChildStart(int(start))
	for {
		var childKey []byte
		if lv.isLinked(child) {
			target := lv.linkTargetFor(child)
			var chunk []byte
			if lv.next != nil {
				chunk = lv.next.restoreAscend(target, nil)
			} else {
				chunk = lv.tail.Restore(int(target), nil)
			}
			childKey = append(append([]byte(nil), prefix...), chunk...)
		} else {
			childKey = append(append([]byte(nil), prefix...), lv.bases[child])
		}

		if !lv.walkPredictive(child, childKey, visit) {
			return false
		}

		sib, nextPos, ok := lv.louds.NextSibling(int(child), pos)
		if !ok {
			break
		}
		child, pos = uint32(sib), nextPos
	}
	return true
}
