// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package marisa

import "testing"

func TestKeyWeightRoundTrip(t *testing.T) {
	t.Parallel()

	var k Key
	k.SetWeight(3.5)
	if got := k.Weight(); got != 3.5 {
		t.Fatalf("Weight() = %v, want 3.5", got)
	}

	k.SetTerminalNode(42)
	if got := k.TerminalNode(); got != 42 {
		t.Fatalf("TerminalNode() = %d, want 42", got)
	}
}

func TestReverseKeyOrientation(t *testing.T) {
	t.Parallel()

	rk := NewReverseKey([]byte("hello"), 7)
	if rk.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", rk.Len())
	}
	if got := rk.At(0); got != 'o' {
		t.Fatalf("At(0) = %q, want 'o'", got)
	}
	if got := rk.At(4); got != 'h' {
		t.Fatalf("At(4) = %q, want 'h'", got)
	}
	if got := string(rk.Bytes()); got != "olleh" {
		t.Fatalf("Bytes() = %q, want %q", got, "olleh")
	}
	if rk.ID != 7 {
		t.Fatalf("ID = %d, want 7", rk.ID)
	}
}
