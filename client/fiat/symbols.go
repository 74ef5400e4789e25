// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package fiat

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// SymbolInfo describes how a fiat currency symbol is placed around an amount.
type SymbolInfo struct {
	Symbol string `json:"symbol"`
	// Space is true if a space separates the symbol and the number.
	Space bool `json:"space"`
	// RTL is true if the symbol follows the number.
	RTL bool `json:"rtl"`
	// SeparatorSwap is true for currencies that group with '.' and use ','
	// as the decimal point.
	SeparatorSwap bool `json:"separatorSwap"`
}

// DefaultSymbol is used for unknown currencies.
var DefaultSymbol = SymbolInfo{Symbol: "$"}

var upperCaser = cases.Upper(language.AmericanEnglish)

var symbols = map[string]SymbolInfo{
	"ARS": {Symbol: "$", SeparatorSwap: true},
	"AUD": {Symbol: "$"},
	"BRL": {Symbol: "R$", Space: true, SeparatorSwap: true},
	"CAD": {Symbol: "$"},
	"CHF": {Symbol: "CHF", Space: true},
	"CLP": {Symbol: "$", SeparatorSwap: true},
	"CNY": {Symbol: "¥"},
	"CZK": {Symbol: "Kč", Space: true, RTL: true, SeparatorSwap: true},
	"DKK": {Symbol: "kr.", Space: true, SeparatorSwap: true},
	"EUR": {Symbol: "€", Space: true, RTL: true, SeparatorSwap: true},
	"GBP": {Symbol: "£"},
	"HKD": {Symbol: "HK$"},
	"HUF": {Symbol: "Ft", Space: true, RTL: true, SeparatorSwap: true},
	"IDR": {Symbol: "Rp", SeparatorSwap: true},
	"ILS": {Symbol: "₪", Space: true},
	"INR": {Symbol: "₹"},
	"JPY": {Symbol: "¥"},
	"KRW": {Symbol: "₩"},
	"MXN": {Symbol: "$"},
	"NGN": {Symbol: "₦"},
	"NOK": {Symbol: "kr", Space: true, RTL: true, SeparatorSwap: true},
	"NZD": {Symbol: "$"},
	"PHP": {Symbol: "₱"},
	"PLN": {Symbol: "zł", Space: true, RTL: true, SeparatorSwap: true},
	"RUB": {Symbol: "₽", Space: true, RTL: true, SeparatorSwap: true},
	"SEK": {Symbol: "kr", Space: true, RTL: true, SeparatorSwap: true},
	"SGD": {Symbol: "$"},
	"THB": {Symbol: "฿"},
	"TRY": {Symbol: "₺", SeparatorSwap: true},
	"TWD": {Symbol: "NT$"},
	"UAH": {Symbol: "₴", Space: true, RTL: true, SeparatorSwap: true},
	"USD": {Symbol: "$"},
	"VND": {Symbol: "₫", Space: true, RTL: true, SeparatorSwap: true},
	"ZAR": {Symbol: "R", Space: true},
}

// normalizeCode upper-cases the code and checks that it is a known ISO 4217
// currency. An empty string is returned for anything else.
func normalizeCode(code string) string {
	if code == "" {
		return ""
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return ""
	}
	return upperCaser.String(unit.String())
}

// SymbolLookup returns the display info for the currency code, or
// DefaultSymbol if the code is unknown.
func SymbolLookup(code string) SymbolInfo {
	if si, found := symbols[normalizeCode(code)]; found {
		return si
	}
	return DefaultSymbol
}
