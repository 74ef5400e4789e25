// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package fiat

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	commaPrinter   = message.NewPrinter(language.AmericanEnglish)
	decimalPrinter = message.NewPrinter(language.German)
)

// splitNumber breaks a decimal string into its sign, integer and fractional
// parts. ok is false if s is not a plain decimal number.
func splitNumber(s string) (neg bool, whole uint64, frac string, ok bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	if intPart == "" || strings.HasPrefix(intPart, "+") {
		return false, 0, "", false
	}
	for _, r := range frac {
		if r < '0' || r > '9' {
			return false, 0, "", false
		}
	}
	whole, err := strconv.ParseUint(intPart, 10, 64)
	if err != nil {
		return false, 0, "", false
	}
	return neg, whole, frac, true
}

func group(p *message.Printer, point, s string) string {
	neg, whole, frac, ok := splitNumber(s)
	if !ok {
		return "0"
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(p.Sprintf("%d", whole))
	if frac != "" {
		b.WriteString(point)
		b.WriteString(frac)
	}
	return b.String()
}

// NumberWithCommas groups the integer part of a decimal string in threes
// with commas, e.g. "1234567.89" => "1,234,567.89". Empty or invalid input
// renders as "0".
func NumberWithCommas(s string) string {
	return group(commaPrinter, ".", s)
}

// NumberWithDecimals is NumberWithCommas with the separators swapped, e.g.
// "1234567.89" => "1.234.567,89".
func NumberWithDecimals(s string) string {
	return group(decimalPrinter, ",", s)
}
