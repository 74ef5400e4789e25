// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package units tracks the selected display unit for bitcoin amounts and
// renders amounts as sats, BTC or the selected fiat currency.
package units

import (
	"strconv"
	"strings"
	"sync"

	"github.com/setlife-network/zeus/client/fiat"
	"github.com/setlife-network/zeus/client/settings"
	"github.com/setlife-network/zeus/dex"
	"github.com/setlife-network/zeus/dex/amount"
	"github.com/setlife-network/zeus/dex/fiatrates"
)

const (
	btcSymbol = "₿"
	// naFiat is rendered when no fiat rate data is available.
	naFiat = "$N/A"
)

// Controller holds the current display unit and converts amounts for
// display. The current unit starts as UnitSats.
type Controller struct {
	log      dex.Logger
	settings Settings
	fiat     FiatStore

	mtx  sync.RWMutex
	unit Unit

	listenersMtx sync.RWMutex
	listeners    map[string]chan<- Unit
}

// NewController is the constructor for a Controller.
func NewController(s Settings, f FiatStore, log dex.Logger) *Controller {
	return &Controller{
		log:       log,
		settings:  s,
		fiat:      f,
		unit:      UnitSats,
		listeners: make(map[string]chan<- Unit),
	}
}

// Units is the current display unit.
func (c *Controller) Units() Unit {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.unit
}

// CycleUnits advances to the next display unit and returns it. With fiat
// display off the unit toggles between sats and BTC, otherwise it cycles
// sats -> BTC -> fiat -> sats. The fiat setting is checked on every call.
func (c *Controller) CycleUnits() Unit {
	fiatOff := settings.FiatDisabled(c.settings.FiatCurrency())
	c.mtx.Lock()
	switch {
	case fiatOff && c.unit == UnitSats:
		c.unit = UnitBTC
	case fiatOff:
		c.unit = UnitSats
	case c.unit == UnitSats:
		c.unit = UnitBTC
	case c.unit == UnitBTC:
		c.unit = UnitFiat
	default:
		c.unit = UnitSats
	}
	u := c.unit
	c.mtx.Unlock()
	c.log.Debugf("Display unit changed to %s", u)
	c.notifyListeners(u)
	return u
}

// ResetUnits sets the display unit back to sats.
func (c *Controller) ResetUnits() {
	c.mtx.Lock()
	changed := c.unit != UnitSats
	c.unit = UnitSats
	c.mtx.Unlock()
	if changed {
		c.log.Debugf("Display unit reset to %s", UnitSats)
		c.notifyListeners(UnitSats)
	}
}

// AddUnitsListener registers a channel to receive the new unit whenever it
// changes. Sends do not block, so the channel should be buffered. An existing
// listener with the same id is replaced.
func (c *Controller) AddUnitsListener(id string, ch chan<- Unit) {
	c.listenersMtx.Lock()
	defer c.listenersMtx.Unlock()
	c.listeners[id] = ch
}

// RemoveUnitsListener unregisters and closes the listener's channel.
func (c *Controller) RemoveUnitsListener(id string) {
	c.listenersMtx.Lock()
	defer c.listenersMtx.Unlock()
	ch, found := c.listeners[id]
	if !found {
		return
	}
	delete(c.listeners, id)
	close(ch)
}

func (c *Controller) notifyListeners(u Unit) {
	c.listenersMtx.RLock()
	defer c.listenersMtx.RUnlock()
	for id, ch := range c.listeners {
		select {
		case ch <- u:
		default:
			c.log.Warnf("Units listener %q is not keeping up. Dropping update.", id)
		}
	}
}

func (c *Controller) effectiveUnit(fixed Unit) Unit {
	if fixed != "" {
		return fixed
	}
	return c.Units()
}

// Describe breaks the satoshi amount into its display parts in the fixed
// unit, or the current unit if fixed is empty. Fiat amounts return
// ErrFiatDisabled if no currency is selected and ErrFiatRatesUnavailable if
// there is no rate data. A currency missing from the rate data is rendered at
// a rate of zero.
func (c *Controller) Describe(sats int64, fixed Unit) (*ValueDisplay, error) {
	negative := sats < 0
	abs := amount.Magnitude(sats)
	switch u := c.effectiveUnit(fixed); u {
	case UnitBTC:
		return &ValueDisplay{
			Amount:   amount.FormatBTC(abs, c.settings.ShowAllDecimalPlaces()),
			Unit:     UnitBTC,
			Negative: negative,
			Space:    boolPtr(false),
		}, nil
	case UnitSats:
		return &ValueDisplay{
			Amount:   c.fiat.NumberWithCommas(strconv.FormatUint(abs, 10)),
			Unit:     UnitSats,
			Negative: negative,
			Plural:   boolPtr(abs != 1),
		}, nil
	case UnitFiat:
		code := c.settings.FiatCurrency()
		if settings.FiatDisabled(code) {
			return nil, ErrFiatDisabled
		}
		rates, ok := c.fiat.FiatRates()
		if !ok {
			return nil, ErrFiatRatesUnavailable
		}
		si := c.fiat.GetSymbol()
		return &ValueDisplay{
			Amount:   c.groupFiat(fiatValue(abs, rateFor(rates, code)), si.SeparatorSwap),
			Unit:     UnitFiat,
			Symbol:   si.Symbol,
			Negative: negative,
			RTL:      boolPtr(si.RTL),
			Space:    boolPtr(si.Space),
		}, nil
	default:
		return nil, dex.NewError(ErrUnknownUnit, string(u))
	}
}

// DescribeString is Describe for a textual amount. See ParseRawAmount.
func (c *Controller) DescribeString(s string, fixed Unit) (*ValueDisplay, error) {
	sats, err := ParseRawAmount(s)
	if err != nil {
		return nil, err
	}
	return c.Describe(sats, fixed)
}

// Format renders the satoshi amount as a display string in the fixed unit, or
// the current unit if fixed is empty or unknown. Format never fails. "$N/A"
// is returned for fiat if there is no rate data.
func (c *Controller) Format(sats int64, fixed Unit) string {
	u := c.effectiveUnit(fixed)
	if !u.valid() {
		u = c.Units()
	}
	abs := amount.Magnitude(sats)
	var s string
	switch u {
	case UnitBTC:
		s = btcSymbol + amount.FormatBTC(abs, c.settings.ShowAllDecimalPlaces())
	case UnitFiat:
		rates, ok := c.fiat.FiatRates()
		if !ok {
			return naFiat
		}
		code := c.settings.FiatCurrency()
		si := c.fiat.SymbolLookup(code)
		s = joinSymbol(c.groupFiat(fiatValue(abs, rateFor(rates, code)), si.SeparatorSwap), si)
	default:
		s = c.fiat.NumberWithCommas(strconv.FormatUint(abs, 10))
		if abs == 1 {
			s += " sat"
		} else {
			s += " sats"
		}
	}
	if sats < 0 {
		return "-" + s
	}
	return s
}

// FormatString is Format for a textual amount. Text that is not a number
// renders as zero.
func (c *Controller) FormatString(s string, fixed Unit) string {
	sats, err := ParseRawAmount(s)
	if err != nil {
		c.log.Tracef("Formatting invalid amount %q as zero", s)
	}
	return c.Format(sats, fixed)
}

func (c *Controller) groupFiat(v string, separatorSwap bool) string {
	if separatorSwap {
		return c.fiat.NumberWithDecimals(v)
	}
	return c.fiat.NumberWithCommas(v)
}

// rateFor is the rate of the first entry for the code, or zero.
func rateFor(rates []*fiatrates.FiatRate, code string) float64 {
	for _, r := range rates {
		if r.Code == code {
			return r.Rate
		}
	}
	return 0
}

func fiatValue(sats uint64, rate float64) string {
	return amount.FormatFiat(amount.MagnitudeToBTC(sats) * rate)
}

func joinSymbol(num string, si fiat.SymbolInfo) string {
	var sep string
	if si.Space {
		sep = " "
	}
	if si.RTL {
		return strings.Join([]string{num, si.Symbol}, sep)
	}
	return strings.Join([]string{si.Symbol, num}, sep)
}

func boolPtr(b bool) *bool {
	return &b
}
