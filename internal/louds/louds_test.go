// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package louds

import "testing"

// buildSample encodes the textbook LOUDS example:
//
//	root(0) has children 1,2,3
//	node 1 has children 4,5
//	node 2 has no children
//	node 3 has child 6
//	nodes 4,5,6 are leaves
//
// BFS degree sequence: root=3, n1=2, n2=0, n3=1, n4=0, n5=0, n6=0
func buildSample() *Tree {
	b := NewBuilder()
	for _, d := range []int{3, 2, 0, 1, 0, 0, 0} {
		b.PushDegree(d)
	}
	return b.Build()
}

func TestShape(t *testing.T) {
	tr := buildSample()

	if got := tr.NumNodes(); got != 7 {
		t.Fatalf("NumNodes = %d, want 7", got)
	}

	if !tr.HasChild(0) {
		t.Fatal("root should have children")
	}
	if fc := tr.FirstChild(0); fc != 1 {
		t.Fatalf("FirstChild(0) = %d, want 1", fc)
	}
	if d := tr.Degree(0); d != 3 {
		t.Fatalf("Degree(0) = %d, want 3", d)
	}

	if tr.HasChild(2) {
		t.Fatal("node 2 should be a leaf")
	}

	if fc := tr.FirstChild(1); fc != 4 {
		t.Fatalf("FirstChild(1) = %d, want 4", fc)
	}
	if fc := tr.FirstChild(3); fc != 6 {
		t.Fatalf("FirstChild(3) = %d, want 6", fc)
	}
}

func TestParent(t *testing.T) {
	tr := buildSample()

	for parent, children := range map[int][]int{
		0: {1, 2, 3},
		1: {4, 5},
		3: {6},
	} {
		for _, c := range children {
			if got := tr.Parent(c); got != parent {
				t.Fatalf("Parent(%d) = %d, want %d", c, got, parent)
			}
		}
	}
}

func TestSiblingWalk(t *testing.T) {
	tr := buildSample()

	v := tr.FirstChild(0) // node 1
	pos := tr.ChildStart(0)

	var siblings []int
	for {
		siblings = append(siblings, v)
		next, nextPos, ok := tr.NextSibling(v, pos)
		if !ok {
			break
		}
		v, pos = next, nextPos
	}

	want := []int{1, 2, 3}
	if len(siblings) != len(want) {
		t.Fatalf("siblings = %v, want %v", siblings, want)
	}
	for i := range want {
		if siblings[i] != want[i] {
			t.Fatalf("siblings = %v, want %v", siblings, want)
		}
	}
}
