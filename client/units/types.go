// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package units

import (
	"strconv"
	"strings"

	"github.com/setlife-network/zeus/client/fiat"
	"github.com/setlife-network/zeus/dex"
	"github.com/setlife-network/zeus/dex/fiatrates"
)

// Unit is a display unit for amounts.
type Unit string

// The display units. The zero value Unit means no override when passed to
// Describe or Format.
const (
	UnitSats Unit = "sats"
	UnitBTC  Unit = "BTC"
	UnitFiat Unit = "fiat"
)

// Describe errors. The messages are suitable for display.
const (
	ErrFiatDisabled         = dex.ErrorKind("Disabled")
	ErrFiatRatesUnavailable = dex.ErrorKind("Error fetching fiat rates")
	ErrUnknownUnit          = dex.ErrorKind("unknown unit")
	ErrInvalidAmount        = dex.ErrorKind("invalid amount")
)

func (u Unit) valid() bool {
	switch u {
	case UnitSats, UnitBTC, UnitFiat:
		return true
	}
	return false
}

// ParseUnit parses a unit name, ignoring case.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sats":
		return UnitSats, nil
	case "btc":
		return UnitBTC, nil
	case "fiat":
		return UnitFiat, nil
	}
	return "", dex.NewError(ErrUnknownUnit, s)
}

// ParseRawAmount parses a textual satoshi amount. Any fractional part is
// dropped before conversion, so "1234.99" is 1234 and "-0.5" is 0.
func ParseRawAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	for _, r := range frac {
		if r < '0' || r > '9' {
			return 0, dex.NewError(ErrInvalidAmount, s)
		}
	}
	switch whole {
	case "", "-", "+":
		if frac == "" {
			return 0, dex.NewError(ErrInvalidAmount, s)
		}
		return 0, nil
	}
	sats, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, dex.NewError(ErrInvalidAmount, s)
	}
	return sats, nil
}

// ValueDisplay is an amount broken into its displayable parts. The sign is
// carried by Negative, and Amount is always a magnitude. Plural is only set
// for sats, RTL only for fiat and Space only for BTC and fiat.
type ValueDisplay struct {
	Amount   string `json:"amount"`
	Unit     Unit   `json:"unit"`
	Symbol   string `json:"symbol,omitempty"`
	Negative bool   `json:"negative"`
	Plural   *bool  `json:"plural,omitempty"`
	RTL      *bool  `json:"rtl,omitempty"`
	Space    *bool  `json:"space,omitempty"`
}

// Settings supplies the user's display settings.
type Settings interface {
	// FiatCurrency is the selected currency code. Empty or "Disabled" if fiat
	// display is off.
	FiatCurrency() string
	ShowAllDecimalPlaces() bool
}

// FiatStore supplies exchange rates and currency presentation rules.
type FiatStore interface {
	// FiatRates returns the ordered rate list. ok is false if no rate data is
	// available at all.
	FiatRates() (rates []*fiatrates.FiatRate, ok bool)
	NumberWithCommas(string) string
	NumberWithDecimals(string) string
	SymbolLookup(code string) fiat.SymbolInfo
	GetSymbol() fiat.SymbolInfo
}
