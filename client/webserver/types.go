// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package webserver

import (
	"github.com/setlife-network/zeus/client/units"
	"github.com/setlife-network/zeus/dex/fiatrates"
)

// standardResponse is a basic API response when no data needs to be returned.
type standardResponse struct {
	OK  bool   `json:"ok"`
	Msg string `json:"msg,omitempty"`
}

// unitsResponse is the response to the units routes.
type unitsResponse struct {
	OK    bool       `json:"ok"`
	Units units.Unit `json:"units"`
}

// amountResponse carries both renderings of an amount. Display is nil, and
// Msg set, if the amount could not be described. Formatted is always set.
type amountResponse struct {
	OK        bool                `json:"ok"`
	Msg       string              `json:"msg,omitempty"`
	Display   *units.ValueDisplay `json:"display,omitempty"`
	Formatted string              `json:"formatted"`
}

// settingsForm updates the display settings. Nil fields are unchanged.
type settingsForm struct {
	Fiat                 *string `json:"fiat"`
	ShowAllDecimalPlaces *bool   `json:"showAllDecimalPlaces"`
}

// ratesResponse is the response to the rates route.
type ratesResponse struct {
	OK         bool                  `json:"ok"`
	Available  bool                  `json:"available"`
	Rates      []*fiatrates.FiatRate `json:"rates"`
	Currencies []string              `json:"currencies"`
}
