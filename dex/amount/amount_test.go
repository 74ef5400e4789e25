package amount

import (
	"math"
	"testing"
)

func TestSatsToBTC(t *testing.T) {
	if btc := SatsToBTC(100_000_000); btc != 1 {
		t.Fatalf("1e8 sats should be exactly 1 BTC, got %v", btc)
	}
	if btc := SatsToBTC(-50_000_000); btc != -0.5 {
		t.Fatalf("wrong negative conversion %v", btc)
	}
	if SatsPerBTC != 1e8 {
		t.Fatalf("wrong sats per BTC %d", int64(SatsPerBTC))
	}
}

func TestFormatBTC(t *testing.T) {
	tests := []struct {
		name    string
		sats    uint64
		showAll bool
		exp     string
	}{
		{"one btc trimmed", 100_000_000, false, "1"},
		{"one btc full", 100_000_000, true, "1.00000000"},
		{"all places used", 12_345_678, false, "0.12345678"},
		{"all places used full", 12_345_678, true, "0.12345678"},
		{"zero trimmed", 0, false, "0"},
		{"zero full", 0, true, "0.00000000"},
		{"one sat", 1, false, "0.00000001"},
		{"trailing zeros", 10_000, false, "0.0001"},
		{"trailing zeros full", 10_000, true, "0.00010000"},
		{"large", 2_100_000_000_000_000, false, "21000000"},
		{"fractional whole", 150_000_000, false, "1.5"},
		{"min int64 magnitude", 1 << 63, false, "92233720368.54775808"},
		{"max uint64", math.MaxUint64, true, "184467440737.09551615"},
	}
	for _, tt := range tests {
		if got := FormatBTC(tt.sats, tt.showAll); got != tt.exp {
			t.Fatalf("%s: wanted %q, got %q", tt.name, tt.exp, got)
		}
	}
}

func TestFormatFiat(t *testing.T) {
	tests := []struct {
		v   float64
		exp string
	}{
		{0, "0.00"},
		{1, "1.00"},
		{1234.567, "1234.57"},
		{0.001, "0.00"},
		{65000 * 0.12345678, "8024.69"},
	}
	for _, tt := range tests {
		if got := FormatFiat(tt.v); got != tt.exp {
			t.Fatalf("FormatFiat(%v): wanted %q, got %q", tt.v, tt.exp, got)
		}
	}
}

func TestTrimTrailingZeros(t *testing.T) {
	tests := map[string]string{
		"1.00000000": "1",
		"1.50":       "1.5",
		"100":        "100",
		"0.0":        "0",
		"10.010":     "10.01",
	}
	for in, exp := range tests {
		if got := TrimTrailingZeros(in); got != exp {
			t.Fatalf("TrimTrailingZeros(%q): wanted %q, got %q", in, exp, got)
		}
	}
}

func TestMagnitude(t *testing.T) {
	tests := []struct {
		sats int64
		exp  uint64
	}{
		{0, 0},
		{1, 1},
		{-1, 1},
		{-12_345_678, 12_345_678},
		{math.MaxInt64, math.MaxInt64},
		{math.MinInt64, 1 << 63},
	}
	for _, tt := range tests {
		if got := Magnitude(tt.sats); got != tt.exp {
			t.Fatalf("Magnitude(%d) = %d, wanted %d", tt.sats, got, tt.exp)
		}
	}
	if btc := MagnitudeToBTC(1 << 63); btc < 9.2e10 || btc > 9.3e10 {
		t.Fatalf("wrong BTC for min int64 magnitude %v", btc)
	}
	if btc := MagnitudeToBTC(50_000_000); btc != 0.5 {
		t.Fatalf("wrong BTC for half a bitcoin %v", btc)
	}
}
