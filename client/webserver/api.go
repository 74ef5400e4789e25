// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package webserver

import (
	"fmt"
	"net/http"

	"github.com/setlife-network/zeus/client/db"
	"github.com/setlife-network/zeus/client/units"
)

// apiUnits is the handler for the '/units' API request.
func (s *WebServer) apiUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, &unitsResponse{OK: true, Units: s.units.Units()}, s.indent)
}

// apiCycleUnits is the handler for the '/units/cycle' API request.
func (s *WebServer) apiCycleUnits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, &unitsResponse{OK: true, Units: s.units.CycleUnits()}, s.indent)
}

// apiResetUnits is the handler for the '/units/reset' API request.
func (s *WebServer) apiResetUnits(w http.ResponseWriter, r *http.Request) {
	s.units.ResetUnits()
	writeJSON(w, &unitsResponse{OK: true, Units: s.units.Units()}, s.indent)
}

// parseUnitParam parses an optional unit. The empty string is no override.
func parseUnitParam(s string) (units.Unit, error) {
	if s == "" {
		return "", nil
	}
	return units.ParseUnit(s)
}

// renderAmount describes and formats the textual amount. The describe error,
// if any, is returned along with the response.
func (s *WebServer) renderAmount(value string, unit units.Unit) (*amountResponse, error) {
	resp := &amountResponse{
		Formatted: s.units.FormatString(value, unit),
	}
	vd, err := s.units.DescribeString(value, unit)
	if err != nil {
		resp.Msg = err.Error()
		return resp, err
	}
	resp.OK = true
	resp.Display = vd
	return resp, nil
}

// apiAmount is the handler for the '/amount' API request.
func (s *WebServer) apiAmount(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	unit, err := parseUnitParam(q.Get("unit"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	resp, err := s.renderAmount(q.Get("value"), unit)
	if err != nil {
		log.Debugf("Amount %q not described: %v", q.Get("value"), err)
	}
	writeJSON(w, resp, s.indent)
}

// apiSettings is the handler for the GET '/settings' API request.
func (s *WebServer) apiSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.settings.Settings(), s.indent)
}

// apiUpdateSettings is the handler for the POST '/settings' API request.
func (s *WebServer) apiUpdateSettings(w http.ResponseWriter, r *http.Request) {
	form := new(settingsForm)
	if !readPost(w, r, form) {
		return
	}
	err := s.settings.UpdateSettings(func(set *db.Settings) {
		if form.Fiat != nil {
			set.Fiat = *form.Fiat
		}
		if form.ShowAllDecimalPlaces != nil {
			set.Display.ShowAllDecimalPlaces = *form.ShowAllDecimalPlaces
		}
	})
	if err != nil {
		s.writeAPIError(w, "error updating settings: %v", err)
		return
	}
	writeJSON(w, s.settings.Settings(), s.indent)
}

// apiRates is the handler for the '/rates' API request.
func (s *WebServer) apiRates(w http.ResponseWriter, r *http.Request) {
	rates, ok := s.rates.FiatRates()
	writeJSON(w, &ratesResponse{
		OK:         true,
		Available:  ok,
		Rates:      rates,
		Currencies: s.currencies,
	}, s.indent)
}

// writeAPIError logs the formatted error and sends a standardResponse with the
// error message.
func (s *WebServer) writeAPIError(w http.ResponseWriter, format string, a ...any) {
	errMsg := fmt.Sprintf(format, a...)
	log.Error(errMsg)
	writeJSON(w, &standardResponse{
		OK:  false,
		Msg: errMsg,
	}, s.indent)
}
