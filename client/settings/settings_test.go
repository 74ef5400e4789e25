package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/setlife-network/zeus/client/db"
	"github.com/setlife-network/zeus/dex"
)

type tDB struct {
	vals     map[string][]byte
	storeErr error
	getErr   error
}

func newTDB() *tDB {
	return &tDB{vals: make(map[string][]byte)}
}

func (d *tDB) Store(k string, v []byte) error {
	if d.storeErr != nil {
		return d.storeErr
	}
	d.vals[k] = v
	return nil
}

func (d *tDB) Get(k string) ([]byte, error) {
	if d.getErr != nil {
		return nil, d.getErr
	}
	v, found := d.vals[k]
	if !found {
		return nil, dex.NewError(db.ErrNotFound, k)
	}
	return v, nil
}

func (d *tDB) ValueExists(k string) (bool, error) {
	_, found := d.vals[k]
	return found, nil
}

func (d *tDB) Run(context.Context) {}

func (d *tDB) Close() error { return nil }

func TestNewDefaults(t *testing.T) {
	sdb := newTDB()
	s, err := New(sdb)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if s.FiatCurrency() != db.FiatDisabled {
		t.Fatalf("wrong default fiat %q", s.FiatCurrency())
	}
	if s.ShowAllDecimalPlaces() {
		t.Fatalf("show all decimal places should default to false")
	}
	if _, found := sdb.vals[db.SettingsKey]; !found {
		t.Fatalf("defaults not persisted")
	}

	sdb.getErr = errors.New("disk on fire")
	if _, err = New(sdb); err == nil {
		t.Fatalf("no error for db failure")
	}
}

func TestUpdateSettings(t *testing.T) {
	sdb := newTDB()
	s, _ := New(sdb)

	err := s.UpdateSettings(func(set *db.Settings) {
		set.Fiat = "EUR"
		set.Display.ShowAllDecimalPlaces = true
	})
	if err != nil {
		t.Fatalf("UpdateSettings error: %v", err)
	}
	if s.FiatCurrency() != "EUR" || !s.ShowAllDecimalPlaces() {
		t.Fatalf("settings not updated: %+v", s.Settings())
	}

	// Reload from the same db.
	s2, err := New(sdb)
	if err != nil {
		t.Fatalf("New error on reload: %v", err)
	}
	if s2.FiatCurrency() != "EUR" || !s2.ShowAllDecimalPlaces() {
		t.Fatalf("settings not persisted: %+v", s2.Settings())
	}

	// Invalid currency rejected, current settings unchanged.
	if err = s.UpdateSettings(func(set *db.Settings) { set.Fiat = "EURO" }); err == nil {
		t.Fatalf("no error for invalid currency")
	}
	if err = s.UpdateSettings(func(set *db.Settings) { set.Fiat = "Disabled!" }); err == nil {
		t.Fatalf("no error for misspelled disabled sentinel")
	}
	if s.FiatCurrency() != "EUR" {
		t.Fatalf("failed update modified settings")
	}

	// Codes are stored in canonical form.
	if err = s.UpdateSettings(func(set *db.Settings) { set.Fiat = "usd" }); err != nil {
		t.Fatalf("error setting lower-case currency: %v", err)
	}
	if s.FiatCurrency() != "USD" {
		t.Fatalf("lower-case code stored as %q", s.FiatCurrency())
	}
	s2, err = New(sdb)
	if err != nil {
		t.Fatalf("New error on reload: %v", err)
	}
	if s2.FiatCurrency() != "USD" {
		t.Fatalf("lower-case code persisted as %q", s2.FiatCurrency())
	}

	// Disabling is always valid.
	if err = s.UpdateSettings(func(set *db.Settings) { set.Fiat = db.FiatDisabled }); err != nil {
		t.Fatalf("error disabling fiat: %v", err)
	}

	sdb.storeErr = errors.New("read-only")
	if err = s.UpdateSettings(func(set *db.Settings) { set.Fiat = "USD" }); err == nil {
		t.Fatalf("no error for failed store")
	}
	if s.FiatCurrency() != db.FiatDisabled {
		t.Fatalf("settings changed despite store failure")
	}

	for code, want := range map[string]bool{"": true, db.FiatDisabled: true, "USD": false} {
		if FiatDisabled(code) != want {
			t.Fatalf("FiatDisabled(%q) != %t", code, want)
		}
	}

	// Settings returns a copy.
	s.Settings().Fiat = "JPY"
	if s.FiatCurrency() == "JPY" {
		t.Fatalf("Settings did not return a copy")
	}
}
