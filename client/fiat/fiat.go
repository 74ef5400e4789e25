// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package fiat provides fiat exchange rates and currency presentation data
// for amount display.
package fiat

import (
	"context"
	"sync"

	"github.com/setlife-network/zeus/dex"
	"github.com/setlife-network/zeus/dex/fiatrates"
	"github.com/setlife-network/zeus/dex/utils"
)

var log = dex.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger dex.Logger) {
	log = logger
}

// RateSource supplies the latest BTC fiat rates.
type RateSource interface {
	Rates() []*fiatrates.FiatRate
}

// RateFeed is a RateSource that can also push new rates as they are
// calculated.
type RateFeed interface {
	RateSource
	AddFiatRateListener(id string, c chan<- []*fiatrates.FiatRate)
	RemoveFiatRateListener(id string)
}

// CurrencySetting reports the selected fiat currency.
type CurrencySetting interface {
	FiatCurrency() string
}

// Store keeps the last good rate list and looks up currency presentation
// details for the selected currency.
type Store struct {
	src      RateSource
	settings CurrencySetting

	mtx   sync.RWMutex
	rates []*fiatrates.FiatRate
}

// NewStore is the constructor for a Store.
func NewStore(src RateSource, settings CurrencySetting) *Store {
	return &Store{
		src:      src,
		settings: settings,
	}
}

// Run subscribes to the RateFeed and keeps the rate list current until the
// context is canceled.
func (s *Store) Run(ctx context.Context, feed RateFeed) {
	const listenerID = "fiat-store"
	c := make(chan []*fiatrates.FiatRate, 1)
	feed.AddFiatRateListener(listenerID, c)
	defer feed.RemoveFiatRateListener(listenerID)
	for {
		select {
		case rates, ok := <-c:
			if !ok {
				return
			}
			s.setRates(rates)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) setRates(rates []*fiatrates.FiatRate) {
	if len(rates) == 0 {
		return
	}
	s.mtx.Lock()
	s.rates = rates
	s.mtx.Unlock()
	log.Tracef("Updated %d fiat rates", len(rates))
}

// FiatRates returns the ordered rate list. The bool is false if rate data
// has never been received. A currency missing from a non-empty list is not
// an error here.
func (s *Store) FiatRates() ([]*fiatrates.FiatRate, bool) {
	if s.src != nil {
		s.setRates(s.src.Rates())
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.rates, s.rates != nil
}

// NumberWithCommas groups a decimal string with commas.
func (s *Store) NumberWithCommas(v string) string {
	return NumberWithCommas(v)
}

// NumberWithDecimals groups a decimal string with points and uses a comma
// as the decimal separator.
func (s *Store) NumberWithDecimals(v string) string {
	return NumberWithDecimals(v)
}

// SymbolLookup returns the display info for the currency code.
func (s *Store) SymbolLookup(code string) SymbolInfo {
	return SymbolLookup(code)
}

// GetSymbol returns the display info for the selected currency.
func (s *Store) GetSymbol() SymbolInfo {
	return SymbolLookup(s.settings.FiatCurrency())
}

// Currencies are the currency codes with known symbols, sorted.
func Currencies() []string {
	return utils.SortedKeys(symbols)
}
