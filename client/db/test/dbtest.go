// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package dbtest

import (
	"math/rand"
	"testing"

	"github.com/setlife-network/zeus/client/db"
)

var fiatCodes = []string{"USD", "EUR", "JPY", "ILS", "BRL", "", db.FiatDisabled}

// RandomSettings creates Settings with random values.
func RandomSettings() *db.Settings {
	return &db.Settings{
		Fiat: fiatCodes[rand.Intn(len(fiatCodes))],
		Display: db.DisplaySettings{
			ShowAllDecimalPlaces: rand.Intn(2) == 1,
		},
	}
}

// MustCompareSettings ensures the two Settings are identical, calling the
// Fatalf method of the testing.T if they are not.
func MustCompareSettings(t testing.TB, s1, s2 *db.Settings) {
	t.Helper()
	if s1.Fiat != s2.Fiat {
		t.Fatalf("Fiat mismatch. %q != %q", s1.Fiat, s2.Fiat)
	}
	if s1.Display.ShowAllDecimalPlaces != s2.Display.ShowAllDecimalPlaces {
		t.Fatalf("ShowAllDecimalPlaces mismatch. %t != %t",
			s1.Display.ShowAllDecimalPlaces, s2.Display.ShowAllDecimalPlaces)
	}
}
