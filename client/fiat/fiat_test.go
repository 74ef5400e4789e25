package fiat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/setlife-network/zeus/dex/fiatrates"
)

func TestNumberWithCommas(t *testing.T) {
	tests := []struct {
		in, commas, decimals string
	}{
		{"0", "0", "0"},
		{"1", "1", "1"},
		{"999", "999", "999"},
		{"1000", "1,000", "1.000"},
		{"1234567", "1,234,567", "1.234.567"},
		{"1234567.89", "1,234,567.89", "1.234.567,89"},
		{"-1234.5", "-1,234.5", "-1.234,5"},
		{"12.00", "12.00", "12,00"},
		{"", "0", "0"},
		{"abc", "0", "0"},
		{"12.3x", "0", "0"},
		{".5", "0", "0"},
		{"9223372036854775808", "9,223,372,036,854,775,808", "9.223.372.036.854.775.808"},
	}
	for _, tt := range tests {
		if got := NumberWithCommas(tt.in); got != tt.commas {
			t.Fatalf("NumberWithCommas(%q): wanted %q, got %q", tt.in, tt.commas, got)
		}
		if got := NumberWithDecimals(tt.in); got != tt.decimals {
			t.Fatalf("NumberWithDecimals(%q): wanted %q, got %q", tt.in, tt.decimals, got)
		}
	}
}

func TestSymbolLookup(t *testing.T) {
	tests := []struct {
		code string
		want SymbolInfo
	}{
		{"USD", SymbolInfo{Symbol: "$"}},
		{"usd", SymbolInfo{Symbol: "$"}},
		{"EUR", SymbolInfo{Symbol: "€", Space: true, RTL: true, SeparatorSwap: true}},
		{"GBP", SymbolInfo{Symbol: "£"}},
		{"", DefaultSymbol},
		{"Disabled", DefaultSymbol},
		{"XYZ1", DefaultSymbol},
	}
	for _, tt := range tests {
		if got := SymbolLookup(tt.code); got != tt.want {
			t.Fatalf("SymbolLookup(%q): wanted %+v, got %+v", tt.code, tt.want, got)
		}
	}
}

type tCurrency string

func (c tCurrency) FiatCurrency() string { return string(c) }

type tFeed struct {
	mtx       sync.Mutex
	rates     []*fiatrates.FiatRate
	listeners map[string]chan<- []*fiatrates.FiatRate
}

func (f *tFeed) Rates() []*fiatrates.FiatRate {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.rates
}

func (f *tFeed) AddFiatRateListener(id string, c chan<- []*fiatrates.FiatRate) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.listeners[id] = c
}

func (f *tFeed) RemoveFiatRateListener(id string) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	if c, found := f.listeners[id]; found {
		delete(f.listeners, id)
		close(c)
	}
}

func TestFiatRates(t *testing.T) {
	feed := &tFeed{listeners: make(map[string]chan<- []*fiatrates.FiatRate)}
	s := NewStore(feed, tCurrency("EUR"))

	if rates, ok := s.FiatRates(); ok || len(rates) != 0 {
		t.Fatalf("rates reported available before any were received")
	}

	feed.mtx.Lock()
	feed.rates = []*fiatrates.FiatRate{{Code: "EUR", Rate: 50000}, {Code: "USD", Rate: 55000}}
	feed.mtx.Unlock()

	rates, ok := s.FiatRates()
	if !ok || len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d, ok = %t", len(rates), ok)
	}

	// Expired source data keeps the last good list.
	feed.mtx.Lock()
	feed.rates = []*fiatrates.FiatRate{}
	feed.mtx.Unlock()
	if rates, ok = s.FiatRates(); !ok || len(rates) != 2 {
		t.Fatalf("last good rates not retained")
	}

	if si := s.GetSymbol(); si.Symbol != "€" {
		t.Fatalf("wrong symbol for selected currency: %+v", si)
	}
}

func TestRun(t *testing.T) {
	feed := &tFeed{listeners: make(map[string]chan<- []*fiatrates.FiatRate)}
	s := NewStore(nil, tCurrency("USD"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, feed)
		close(done)
	}()

	var c chan<- []*fiatrates.FiatRate
	for i := 0; i < 100 && c == nil; i++ {
		feed.mtx.Lock()
		c = feed.listeners["fiat-store"]
		feed.mtx.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	if c == nil {
		t.Fatalf("store never subscribed")
	}
	c <- []*fiatrates.FiatRate{{Code: "USD", Rate: 60000}}

	var rates []*fiatrates.FiatRate
	for i := 0; i < 100; i++ {
		if rates, _ = s.FiatRates(); len(rates) == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(rates) != 1 || rates[0].Rate != 60000 {
		t.Fatalf("pushed rates not stored")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancel")
	}
	if len(feed.listeners) != 0 {
		t.Fatalf("listener not removed")
	}
}

func TestCurrencies(t *testing.T) {
	codes := Currencies()
	if len(codes) != len(symbols) {
		t.Fatalf("wrong number of currencies")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("currencies not sorted: %v", codes)
		}
	}
}
