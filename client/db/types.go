// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package db

import (
	"encoding/json"
	"fmt"

	"github.com/setlife-network/zeus/dex"
)

// ErrNotFound is returned by Get when nothing is stored for the key.
const ErrNotFound = dex.ErrorKind("no value found")

// SettingsKey is the general-use key the client settings are stored under.
const SettingsKey = "settings"

// FiatDisabled is the fiat currency value that turns off fiat display.
const FiatDisabled = "Disabled"

// DisplaySettings are the user's amount display preferences.
type DisplaySettings struct {
	// ShowAllDecimalPlaces keeps trailing zeros in BTC amounts.
	ShowAllDecimalPlaces bool `json:"showAllDecimalPlaces"`
}

// Settings are the persisted user settings that affect amount display.
type Settings struct {
	// Fiat is the ISO 4217 code of the currency amounts may be displayed in.
	// Empty or FiatDisabled means fiat display is off.
	Fiat    string          `json:"fiat"`
	Display DisplaySettings `json:"display"`
}

// DefaultSettings are the settings for a new installation.
func DefaultSettings() *Settings {
	return &Settings{
		Fiat: FiatDisabled,
	}
}

// FiatEnabled is true if a fiat currency is selected.
func (s *Settings) FiatEnabled() bool {
	return s.Fiat != "" && s.Fiat != FiatDisabled
}

// Copy returns a copy of the Settings.
func (s *Settings) Copy() *Settings {
	c := *s
	return &c
}

// Encode encodes the Settings for storage.
func (s *Settings) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSettings decodes the Settings from stored bytes.
func DecodeSettings(b []byte) (*Settings, error) {
	s := new(Settings)
	if err := json.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	return s, nil
}
