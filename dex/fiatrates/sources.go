// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package fiatrates

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/setlife-network/zeus/dex"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

const (
	defaultRefreshInterval   = 5 * time.Minute
	coingeckoRefreshInterval = 10 * time.Minute

	// minRequestSpacing is the minimum time between two requests to the same
	// source, regardless of how often a refresh is requested.
	minRequestSpacing = 30 * time.Second

	coinbase  = "Coinbase"
	coingecko = "CoinGecko"
	btcpay    = "BTCPay"
)

// Source endpoints. These are vars so that tests can point them at a local
// server.
var (
	coinbasePriceEndpoint  = "https://api.coinbase.com/v2/exchange-rates?currency=BTC"
	coingeckoPriceEndpoint = "https://api.coingecko.com/api/v3/simple/price?ids=bitcoin&vs_currencies=%s"
	btcpayPriceEndpoint    = "https://pay.zeusln.app/api/rates?storeId=Fjt7gLnGpg4UeBMFccLquy3GTTEz4cHU4PZMU63zqMBo"
)

var (
	upperCaser = cases.Upper(language.AmericanEnglish)
	lowerCaser = cases.Lower(language.AmericanEnglish)
)

func newSource(name string, interval time.Duration, disabled bool, fetcher rateFetcher) *source {
	return &source{
		name:            name,
		requestInterval: interval,
		limiter:         rate.NewLimiter(rate.Every(minRequestSpacing), 1),
		getRates:        fetcher,
		disabled:        disabled,
		canReactivate:   !disabled,
	}
}

func fiatSources(cfg Config) []*source {
	disabledSources := strings.ToLower(cfg.DisabledFiatSources)
	isDisabled := func(name string) bool {
		return strings.Contains(disabledSources, strings.ToLower(name))
	}

	return []*source{
		newSource(coinbase, defaultRefreshInterval, isDisabled(coinbase), fetchCoinbaseRates),
		newSource(coingecko, coingeckoRefreshInterval, isDisabled(coingecko), fetchCoingeckoRates),
		newSource(btcpay, defaultRefreshInterval, isDisabled(btcpay), fetchBTCPayRates),
	}
}

// fetchCoinbaseRates retrieves the BTC exchange rates from the Coinbase API.
// The response carries every currency Coinbase supports, as strings.
func fetchCoinbaseRates(ctx context.Context, client *http.Client, currencies []string, log dex.Logger) (map[string]float64, error) {
	var response struct {
		Data struct {
			Currency string            `json:"currency"`
			Rates    map[string]string `json:"rates"`
		} `json:"data"`
	}
	if err := getRates(ctx, client, coinbasePriceEndpoint, &response); err != nil {
		return nil, fmt.Errorf("unable to fetch fiat rates: %w", err)
	}

	fiatRates := make(map[string]float64, len(currencies))
	for _, code := range currencies {
		rateStr, found := response.Data.Rates[code]
		if !found {
			continue
		}
		r, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			log.Errorf("%s: failed to convert fiat rate for %s to float64: %v", coinbase, code, err)
			continue
		}
		fiatRates[code] = r
	}
	return fiatRates, nil
}

// fetchCoingeckoRates retrieves the BTC exchange rates from the CoinGecko
// simple price API.
func fetchCoingeckoRates(ctx context.Context, client *http.Client, currencies []string, log dex.Logger) (map[string]float64, error) {
	if len(currencies) == 0 {
		return nil, nil // nothing to fetch
	}
	var response map[string]map[string]float64
	reqURL := fmt.Sprintf(coingeckoPriceEndpoint, lowerCaser.String(strings.Join(currencies, ",")))
	if err := getRates(ctx, client, reqURL, &response); err != nil {
		return nil, fmt.Errorf("unable to fetch fiat rates: %w", err)
	}

	fiatRates := make(map[string]float64, len(currencies))
	for code, r := range response["bitcoin"] {
		if r == 0 {
			log.Errorf("zero-price returned from %s for currency %s", coingecko, code)
			continue
		}
		fiatRates[upperCaser.String(code)] = r
	}
	return fiatRates, nil
}

// fetchBTCPayRates retrieves the BTC exchange rates from a BTCPay Server
// store rates endpoint, which returns a list of {code, rate} entries.
func fetchBTCPayRates(ctx context.Context, client *http.Client, currencies []string, _ dex.Logger) (map[string]float64, error) {
	var response []struct {
		Name       string  `json:"name"`
		CryptoCode string  `json:"cryptoCode"`
		Code       string  `json:"code"`
		Rate       float64 `json:"rate"`
	}
	if err := getRates(ctx, client, btcpayPriceEndpoint, &response); err != nil {
		return nil, fmt.Errorf("unable to fetch fiat rates: %w", err)
	}

	wanted := make(map[string]bool, len(currencies))
	for _, code := range currencies {
		wanted[code] = true
	}
	fiatRates := make(map[string]float64, len(currencies))
	for _, entry := range response {
		code := upperCaser.String(entry.Code)
		if !wanted[code] || entry.Rate <= 0 {
			continue
		}
		if entry.CryptoCode != "" && !strings.EqualFold(entry.CryptoCode, "BTC") {
			continue
		}
		fiatRates[code] = entry.Rate
	}
	return fiatRates, nil
}

// parseCurrencies splits the comma-separated list into upper-cased codes.
func parseCurrencies(list string) []string {
	var codes []string
	for _, code := range strings.Split(list, ",") {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		codes = append(codes, upperCaser.String(code))
	}
	return codes
}
