// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package marisa

import "testing"

func TestFlagWordRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []Config{
		DefaultConfig(),
		{NumTries: 1, CacheLevel: CacheTiny, TailMode: TailBinary, NodeOrder: NodeOrderLabel},
		{NumTries: 127, CacheLevel: CacheHuge, TailMode: TailText, NodeOrder: NodeOrderWeight},
		{NumTries: 5, CacheLevel: CacheLarge, TailMode: TailBinary, NodeOrder: NodeOrderWeight},
	}

	for _, cfg := range cases {
		w := EncodeFlags(cfg)
		if w&^uint32(flagWordMask) != 0 {
			t.Fatalf("EncodeFlags(%+v) set reserved bits: %#x", cfg, w)
		}
		got, err := DecodeFlags(w)
		if err != nil {
			t.Fatalf("DecodeFlags(%#x) failed: %v", w, err)
		}
		if got != cfg {
			t.Fatalf("DecodeFlags(EncodeFlags(%+v)) = %+v", cfg, got)
		}
	}
}

func TestFlagWordZeroFieldsSelectDefaults(t *testing.T) {
	t.Parallel()

	got, err := DecodeFlags(0)
	if err != nil {
		t.Fatalf("DecodeFlags(0) failed: %v", err)
	}
	if got != DefaultConfig() {
		t.Fatalf("DecodeFlags(0) = %+v, want %+v", got, DefaultConfig())
	}
}

func TestFlagWordRejectsReservedBits(t *testing.T) {
	t.Parallel()

	if _, err := DecodeFlags(1 << 20); err == nil {
		t.Fatal("DecodeFlags should reject bits outside the 20-bit mask")
	}
}

func TestConfigValidateRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	bad := []Config{
		{NumTries: 0, CacheLevel: CacheNormal, TailMode: TailText, NodeOrder: NodeOrderWeight},
		{NumTries: 128, CacheLevel: CacheNormal, TailMode: TailText, NodeOrder: NodeOrderWeight},
		{NumTries: 3, CacheLevel: 99, TailMode: TailText, NodeOrder: NodeOrderWeight},
		{NumTries: 3, CacheLevel: CacheNormal, TailMode: 99, NodeOrder: NodeOrderWeight},
		{NumTries: 3, CacheLevel: CacheNormal, TailMode: TailText, NodeOrder: 99},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("Validate(%+v) should fail", cfg)
		}
	}
}
