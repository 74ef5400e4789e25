// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package fiatrates

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/setlife-network/zeus/dex"
	"github.com/setlife-network/zeus/dex/utils"
	"golang.org/x/text/currency"
)

const (
	// FiatRateDataExpiry : Any data older than FiatRateDataExpiry will be
	// discarded.
	FiatRateDataExpiry = 60 * time.Minute

	// DefaultCurrencies is the set of currencies fetched when none are
	// configured.
	DefaultCurrencies = "USD,EUR,GBP,CAD,AUD,JPY,CHF,CNY,INR,BRL,MXN,ZAR,ILS,SEK,NOK,DKK,PLN,CZK,TRY,KRW,NGN,ARS"

	// averageRateRefreshInterval is how long it'll take before a fresh fiat
	// average rate is calculated.
	averageRateRefreshInterval = defaultRefreshInterval + time.Minute

	// reactivateDuration is how long a source deactivated for stale data
	// waits before it is tried again.
	reactivateDuration = 24 * time.Hour
)

// Oracle manages and retrieves BTC fiat rate information from all enabled
// rate sources.
type Oracle struct {
	log      dex.Logger
	client   *http.Client
	sources  []*source
	ratesMtx sync.RWMutex
	rates    map[string]*FiatRateInfo

	listenersMtx sync.RWMutex
	listeners    map[string]chan<- []*FiatRate
}

// NewFiatOracle is the constructor for an *Oracle. Every configured currency
// must be a known ISO 4217 code.
func NewFiatOracle(cfg Config, log dex.Logger) (*Oracle, error) {
	return newOracle(cfg, fiatSources(cfg), log)
}

func newOracle(cfg Config, sources []*source, log dex.Logger) (*Oracle, error) {
	list := cfg.Currencies
	if list == "" {
		list = DefaultCurrencies
	}

	o := &Oracle{
		log:       log,
		client:    newHTTPClient(cfg.TorProxy),
		rates:     make(map[string]*FiatRateInfo),
		sources:   sources,
		listeners: make(map[string]chan<- []*FiatRate),
	}

	for _, code := range parseCurrencies(list) {
		if _, err := currency.ParseISO(code); err != nil {
			return nil, fmt.Errorf("unknown currency %s: %w", code, err)
		}
		// Initialize entry for this currency.
		o.rates[code] = new(FiatRateInfo)
	}

	if len(o.rates) == 0 {
		return nil, errors.New("a minimum of one currency is expected to configure fiat oracle")
	}

	return o, nil
}

// Currencies returns the configured currency codes, sorted.
func (o *Oracle) Currencies() []string {
	o.ratesMtx.RLock()
	defer o.ratesMtx.RUnlock()
	return utils.SortedKeys(o.rates)
}

// Rates returns the current BTC fiat rates sorted by currency code. Returns an
// empty slice if there are no valid rates.
func (o *Oracle) Rates() []*FiatRate {
	o.ratesMtx.RLock()
	defer o.ratesMtx.RUnlock()
	rates := make([]*FiatRate, 0, len(o.rates))
	for _, code := range utils.SortedKeys(o.rates) {
		info := o.rates[code]
		if info.Value > 0 && !info.IsExpired() {
			rates = append(rates, &FiatRate{Code: code, Rate: info.Value})
		}
	}
	return rates
}

// Run starts goroutines that refresh fiat rates every source.requestInterval.
// This should be called in a goroutine as it's blocking.
func (o *Oracle) Run(ctx context.Context) {
	var wg sync.WaitGroup
	var sourcesEnabled int
	currencies := o.Currencies()
	for i := range o.sources {
		fiatSource := o.sources[i]
		if fiatSource.isDisabled() {
			o.log.Infof("Fiat rate source %q is disabled...", fiatSource.name)
			continue
		}

		o.fetchFromSource(ctx, fiatSource, &wg)
		sourcesEnabled++

		// Fetch rates now.
		if err := o.refreshSource(ctx, fiatSource, currencies); err != nil {
			o.log.Errorf("failed to retrieve rates from %s: %v", fiatSource.name, err)
		}
	}

	// Calculate average fiat rate now.
	o.calculateAverageRate()

	if sourcesEnabled > 0 {
		// Start a goroutine to generate an average fiat rate based on fresh
		// data from all enabled sources. This is done every
		// averageRateRefreshInterval.
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticker := time.NewTicker(averageRateRefreshInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					reActivatedSources := o.calculateAverageRate()
					for _, index := range reActivatedSources {
						s := o.sources[index]
						o.log.Infof("Fiat rate source %q re-enabled", s.name)
						// Start a new goroutine for this source.
						o.fetchFromSource(ctx, s, &wg)
					}
				}
			}
		}()
	} else {
		o.log.Warnf("No fiat rate sources enabled. Fiat display will be unavailable.")
	}

	wg.Wait()

	o.listenersMtx.Lock()
	for id, rateChan := range o.listeners {
		close(rateChan) // we are done sending fiat rates
		delete(o.listeners, id)
	}
	o.listenersMtx.Unlock()
}

// AddFiatRateListener adds a new fiat rate listener for the provided uniqueID.
// Overrides existing rateChan if uniqueID already exists. Sends to the channel
// do not block, so it should be buffered.
func (o *Oracle) AddFiatRateListener(uniqueID string, ratesChan chan<- []*FiatRate) {
	o.listenersMtx.Lock()
	defer o.listenersMtx.Unlock()
	o.listeners[uniqueID] = ratesChan
}

// RemoveFiatRateListener removes a fiat rate listener. no-op if there's no
// listener for the provided uniqueID. The fiat rate chan will be closed to
// signal to readers that we are done sending.
func (o *Oracle) RemoveFiatRateListener(uniqueID string) {
	o.listenersMtx.Lock()
	defer o.listenersMtx.Unlock()
	rateChan, ok := o.listeners[uniqueID]
	if !ok {
		return
	}

	delete(o.listeners, uniqueID)
	close(rateChan) // we are done sending.
}

// notifyListeners sends the provided rates to all listeners.
func (o *Oracle) notifyListeners(rates []*FiatRate) {
	o.listenersMtx.RLock()
	defer o.listenersMtx.RUnlock()
	for id, rateChan := range o.listeners {
		select {
		case rateChan <- rates:
		default:
			o.log.Warnf("Fiat rate listener %q is not keeping up. Dropping update.", id)
		}
	}
}

// refreshSource fetches new rates from the source, waiting for its rate
// limiter first.
func (o *Oracle) refreshSource(ctx context.Context, s *source, currencies []string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	newRates, err := s.getRates(ctx, o.client, currencies, o.log)
	if err != nil {
		return err
	}
	s.setRates(newRates)
	o.log.Debugf("Fetched %d fiat rates from %s", len(newRates), s.name)
	return nil
}

// calculateAverageRate is a shared function to support fiat average rate
// calculations before and after averageRateRefreshInterval. It returns the
// indexes of any sources that were re-activated.
func (o *Oracle) calculateAverageRate() []int {
	var reActivatedSourceIndexes []int
	newRatesInfo := make(map[string]*fiatRateAndSourceCount)
	for i := range o.sources {
		s := o.sources[i]
		if s.isDisabled() {
			if s.checkIfSourceCanReactivate() {
				reActivatedSourceIndexes = append(reActivatedSourceIndexes, i)
			}
			continue
		}

		for code, r := range s.currentRates() {
			if r <= 0 {
				continue
			}

			info, ok := newRatesInfo[code]
			if !ok {
				info = new(fiatRateAndSourceCount)
				newRatesInfo[code] = info
			}

			info.sources++
			info.totalFiatRate += r
		}
	}

	now := time.Now()
	var broadcastRates []*FiatRate
	o.ratesMtx.Lock()
	for _, code := range utils.SortedKeys(o.rates) {
		rateInfo := newRatesInfo[code]
		if rateInfo == nil {
			continue
		}
		newRate := rateInfo.totalFiatRate / float64(rateInfo.sources)
		if newRate > 0 {
			o.rates[code].Value = newRate
			o.rates[code].LastUpdate = now
			broadcastRates = append(broadcastRates, &FiatRate{Code: code, Rate: newRate})
		}
	}
	o.ratesMtx.Unlock()

	if len(broadcastRates) > 0 {
		o.notifyListeners(broadcastRates)
	}

	return reActivatedSourceIndexes
}

// fetchFromSource starts a goroutine that retrieves fiat rates from the
// provided source.
func (o *Oracle) fetchFromSource(ctx context.Context, s *source, wg *sync.WaitGroup) {
	wg.Add(1)
	go func(s *source) {
		defer wg.Done()
		ticker := time.NewTicker(s.requestInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.isDisabled() { // nothing to fetch.
					continue
				}

				if s.hasRates() && s.isExpired() {
					s.deactivate()
					o.log.Errorf("Fiat rate source %q has been disabled due to lack of fresh data. It will be re-enabled after %.0f hours.", s.name, reactivateDuration.Hours())
					return
				}

				if err := o.refreshSource(ctx, s, o.Currencies()); err != nil {
					o.log.Errorf("%s.getRates error: %v", s.name, err)
				}
			}
		}
	}(s)
}
