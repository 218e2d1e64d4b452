package service

import "testing"

func TestResolveSeatLayout(t *testing.T) {
	cases := []struct {
		typeCode string
		count    int
		prefix   string
		class    string
	}{
		{"LIMOUSINE22", 22, "L", "Limousine"},
		{"limousine", 22, "L", "Limousine"},
		{"GIUONG-NAM-36", 36, "G", "Sleeper"},
		{"Sleeper Deluxe", 36, "G", "Sleeper"},
		{"VIP30", 28, "V", "VIP"},
		{"STANDARD40", 40, "A", "Standard"},
		{"", 40, "A", "Standard"},
		{"unknown-type", 40, "A", "Standard"},
	}
	for _, tc := range cases {
		got := ResolveSeatLayout(tc.typeCode)
		if got.Count != tc.count || got.Prefix != tc.prefix || got.Class != tc.class {
			t.Fatalf("ResolveSeatLayout(%q) = %+v, want count=%d prefix=%q class=%q",
				tc.typeCode, got, tc.count, tc.prefix, tc.class)
		}
	}
}

func TestResolveSeatLayoutLimousineBeatsVIP(t *testing.T) {
	// A code containing both markers resolves by match order.
	got := ResolveSeatLayout("VIP-LIMOUSINE")
	if got.Class != "Limousine" {
		t.Fatalf("expected Limousine for combined code, got %s", got.Class)
	}
}
