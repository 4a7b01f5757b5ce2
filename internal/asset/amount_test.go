package asset

import "testing"

func TestToBaseUnits(t *testing.T) {
	cases := []struct {
		in       string
		decimals uint8
		want     uint64
	}{
		{"2.5", 9, 2_500_000_000},
		{"1", 9, 1_000_000_000},
		{"0.000000001", 9, 1},
		{"100", 9, 100_000_000_000},
		{"3", 0, 3},
	}
	for _, tc := range cases {
		got, err := ToBaseUnits(tc.in, tc.decimals)
		if err != nil {
			t.Fatalf("ToBaseUnits(%q, %d) failed: %v", tc.in, tc.decimals, err)
		}
		if got != tc.want {
			t.Fatalf("ToBaseUnits(%q, %d) = %d, want %d", tc.in, tc.decimals, got, tc.want)
		}
	}
}

func TestToBaseUnitsRejectsInvalidAmounts(t *testing.T) {
	bad := []string{"", "0", "0.0", "-1", "1.2.3", "abc", "1,5", "0.0000000001"}
	for _, in := range bad {
		if v, err := ToBaseUnits(in, 9); err == nil {
			t.Fatalf("expected error for %q, got %d", in, v)
		}
	}
}

func TestFromBaseUnitsRoundTrip(t *testing.T) {
	cases := []struct {
		in       uint64
		decimals uint8
		want     string
	}{
		{2_500_000_000, 9, "2.5"},
		{1, 9, "0.000000001"},
		{1_000_000_000, 9, "1"},
		{0, 9, "0"},
		{42, 0, "42"},
	}
	for _, tc := range cases {
		if got := FromBaseUnits(tc.in, tc.decimals); got != tc.want {
			t.Fatalf("FromBaseUnits(%d, %d) = %q, want %q", tc.in, tc.decimals, got, tc.want)
		}
	}
}

func TestRegistryLookup(t *testing.T) {
	reg := DefaultRegistry()
	if _, ok := reg.Lookup("sol"); !ok {
		t.Fatal("expected case-insensitive SOL lookup")
	}
	sonic, ok := reg.Lookup("SONIC")
	if !ok {
		t.Fatal("expected SONIC in default registry")
	}
	if sonic.Native {
		t.Fatal("SONIC must not be native")
	}
	if sonic.Mint.IsZero() {
		t.Fatal("SONIC mint must be set")
	}
	if _, ok := reg.Lookup("DOGE"); ok {
		t.Fatal("unexpected DOGE in whitelist")
	}
	syms := reg.Symbols()
	if len(syms) != 2 || syms[0] != SymbolSOL || syms[1] != SymbolSONIC {
		t.Fatalf("unexpected symbol order: %v", syms)
	}
}

func TestRegistryWithMintRejectsGarbage(t *testing.T) {
	if _, err := RegistryWithMint("not-a-mint"); err == nil {
		t.Fatal("expected error for malformed mint")
	}
	reg, err := RegistryWithMint(DefaultSonicMint)
	if err != nil {
		t.Fatalf("RegistryWithMint failed: %v", err)
	}
	if _, ok := reg.Lookup(SymbolSONIC); !ok {
		t.Fatal("expected SONIC in overridden registry")
	}
}
