// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package amount converts satoshi quantities into fixed-point strings.
package amount

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

const (
	// SatsPerBTC is the number of satoshis in one bitcoin.
	SatsPerBTC = btcutil.SatoshiPerBitcoin

	// BTCDecimals is the full fixed-point precision of a BTC amount.
	BTCDecimals = 8
	// FiatDecimals is the precision fiat values are rounded to.
	FiatDecimals = 2
)

// SatsToBTC converts an amount in satoshis to a float amount of bitcoin.
func SatsToBTC(sats int64) float64 {
	return btcutil.Amount(sats).ToBTC()
}

// Magnitude is the absolute value of sats. Unlike negation, it is exact for
// math.MinInt64.
func Magnitude(sats int64) uint64 {
	if sats < 0 {
		return uint64(-(sats + 1)) + 1
	}
	return uint64(sats)
}

// MagnitudeToBTC is SatsToBTC for a satoshi magnitude.
func MagnitudeToBTC(m uint64) float64 {
	if m > math.MaxInt64 {
		return float64(m) / SatsPerBTC
	}
	return SatsToBTC(int64(m))
}

// FormatBTC formats the satoshi magnitude as bitcoin with 8 decimal places.
// If showAll is false, trailing zeros, and the decimal point if nothing
// follows it, are trimmed. The conversion is done in integers, so every
// magnitude is exact.
func FormatBTC(sats uint64, showAll bool) string {
	s := fmt.Sprintf("%d.%0*d", sats/SatsPerBTC, BTCDecimals, sats%SatsPerBTC)
	if showAll {
		return s
	}
	return TrimTrailingZeros(s)
}

// FormatFiat rounds v to 2 decimal places.
func FormatFiat(v float64) string {
	return strconv.FormatFloat(v, 'f', FiatDecimals, 64)
}

// TrimTrailingZeros trims trailing decimal zeros of a formatted float string.
// Strings without a decimal point are returned unchanged.
func TrimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}
