// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package fiatrates

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/setlife-network/zeus/dex"
	"golang.org/x/time/rate"
)

// Config is the fiat oracle configuration.
type Config struct {
	Currencies          string `long:"currencies" description:"Comma-separated list of ISO 4217 currency codes to fetch BTC rates for."`
	DisabledFiatSources string `long:"disabledfiatsources" description:"A list of disabled sources separated by comma. See dex/fiatrates/sources.go"`
	TorProxy            string `long:"torproxy" description:"Fetch fiat rates through a SOCKS5 proxy such as Tor (eg. 127.0.0.1:9050)."`
}

// FiatRate is the price of 1 BTC in the currency identified by Code.
type FiatRate struct {
	Code string  `json:"code"`
	Rate float64 `json:"rate"`
}

// FiatRateInfo holds the fiat rate and the last update time for a currency.
type FiatRateInfo struct {
	Value      float64
	LastUpdate time.Time
}

// IsExpired is true if the rate is older than FiatRateDataExpiry.
func (f *FiatRateInfo) IsExpired() bool {
	return time.Since(f.LastUpdate) > FiatRateDataExpiry
}

// rateFetcher gets BTC rates for the currencies. A nil client uses
// http.DefaultClient.
type rateFetcher func(ctx context.Context, client *http.Client, currencies []string, log dex.Logger) (map[string]float64, error)

type source struct {
	name            string
	requestInterval time.Duration
	limiter         *rate.Limiter
	getRates        rateFetcher

	mtx           sync.RWMutex
	rates         map[string]float64
	disabled      bool
	canReactivate bool
	disabledAt    time.Time
	lastRefresh   time.Time
}

func (s *source) isDisabled() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.disabled
}

// hasRates is true if the source has ever returned data.
func (s *source) hasRates() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return !s.lastRefresh.IsZero()
}

// isExpired is true if the last successful refresh is older than
// FiatRateDataExpiry.
func (s *source) isExpired() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return time.Since(s.lastRefresh) > FiatRateDataExpiry
}

func (s *source) setRates(rates map[string]float64) {
	s.mtx.Lock()
	s.rates = rates
	s.lastRefresh = time.Now()
	s.mtx.Unlock()
}

func (s *source) currentRates() map[string]float64 {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.rates
}

// deactivate disables the source and drops its stale rates.
func (s *source) deactivate() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.disabled = true
	s.disabledAt = time.Now()
	s.rates = nil
}

// checkIfSourceCanReactivate re-enables a source that was deactivated for
// stale data once reactivateDuration has passed. Sources disabled by
// configuration never reactivate.
func (s *source) checkIfSourceCanReactivate() bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if !s.disabled || !s.canReactivate {
		return false
	}
	if time.Since(s.disabledAt) < reactivateDuration {
		return false
	}
	s.disabled = false
	s.lastRefresh = time.Time{}
	return true
}

type fiatRateAndSourceCount struct {
	sources       int
	totalFiatRate float64
}
