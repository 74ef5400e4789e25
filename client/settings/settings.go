// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package settings keeps the user's display settings in memory and persists
// changes through the client database.
package settings

import (
	"errors"
	"fmt"
	"sync"

	"github.com/setlife-network/zeus/client/db"
	"github.com/setlife-network/zeus/dex"
	"golang.org/x/text/currency"
)

var log = dex.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger dex.Logger) {
	log = logger
}

// Store is the settings collaborator. Reads are served from memory.
type Store struct {
	db db.DB

	mtx      sync.RWMutex
	settings *db.Settings
}

// New loads the settings from the database, writing the defaults if none
// have been saved yet.
func New(sdb db.DB) (*Store, error) {
	s := &Store{db: sdb}
	b, err := sdb.Get(db.SettingsKey)
	switch {
	case errors.Is(err, db.ErrNotFound):
		log.Infof("No saved settings. Using defaults.")
		s.settings = db.DefaultSettings()
		if err := s.save(s.settings); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("error loading settings: %w", err)
	default:
		if s.settings, err = db.DecodeSettings(b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() *db.Settings {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.settings.Copy()
}

// FiatCurrency is the selected fiat currency code. Empty or db.FiatDisabled
// when fiat display is off.
func (s *Store) FiatCurrency() string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.settings.Fiat
}

// ShowAllDecimalPlaces is the display preference for full BTC precision.
func (s *Store) ShowAllDecimalPlaces() bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.settings.Display.ShowAllDecimalPlaces
}

// UpdateSettings applies the update function to a copy of the settings,
// validates and persists the result, and then makes it current. The current
// settings are unchanged if any step fails.
func (s *Store) UpdateSettings(update func(*db.Settings)) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	newSettings := s.settings.Copy()
	update(newSettings)
	if err := validate(newSettings); err != nil {
		return err
	}
	if err := s.save(newSettings); err != nil {
		return err
	}
	s.settings = newSettings
	log.Debugf("Settings updated. fiat = %q, show all decimals = %t",
		newSettings.Fiat, newSettings.Display.ShowAllDecimalPlaces)
	return nil
}

// FiatDisabled is true for a currency code that turns fiat display off.
func FiatDisabled(code string) bool {
	return code == "" || code == db.FiatDisabled
}

func (s *Store) save(settings *db.Settings) error {
	b, err := settings.Encode()
	if err != nil {
		return err
	}
	if err := s.db.Store(db.SettingsKey, b); err != nil {
		return fmt.Errorf("error saving settings: %w", err)
	}
	return nil
}

// validate checks the settings and rewrites the fiat code in its canonical
// upper-case form, the form rate lists are keyed by.
func validate(s *db.Settings) error {
	if !FiatDisabled(s.Fiat) {
		unit, err := currency.ParseISO(s.Fiat)
		if err != nil {
			return fmt.Errorf("invalid fiat currency %q: %w", s.Fiat, err)
		}
		s.Fiat = unit.String()
	}
	return nil
}
