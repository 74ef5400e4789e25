// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package webserver serves the amount display API and a websocket feed of
// display unit changes for UI clients.
package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/setlife-network/zeus/client/db"
	"github.com/setlife-network/zeus/client/units"
	"github.com/setlife-network/zeus/dex"
	"github.com/setlife-network/zeus/dex/fiatrates"
	"github.com/setlife-network/zeus/dex/msgjson"
)

const (
	// rpcTimeoutSeconds is the number of seconds a connection is allowed to
	// stay open without completing a request.
	rpcTimeoutSeconds = 10
	// maxBodySize limits the size of POST bodies.
	maxBodySize = 1 << 16
	// listenerID identifies the web server's units and rates listeners.
	listenerID = "webserver"
)

var log = dex.Disabled

// UnitsController is satisfied by *units.Controller.
type UnitsController interface {
	Units() units.Unit
	CycleUnits() units.Unit
	ResetUnits()
	DescribeString(s string, fixed units.Unit) (*units.ValueDisplay, error)
	FormatString(s string, fixed units.Unit) string
	AddUnitsListener(id string, c chan<- units.Unit)
	RemoveUnitsListener(id string)
}

// SettingsStore is satisfied by *settings.Store.
type SettingsStore interface {
	Settings() *db.Settings
	UpdateSettings(func(*db.Settings)) error
}

// RateStore is satisfied by *fiat.Store.
type RateStore interface {
	FiatRates() ([]*fiatrates.FiatRate, bool)
}

// RateFeed pushes new fiat rates. Satisfied by *fiatrates.Oracle.
type RateFeed interface {
	AddFiatRateListener(id string, c chan<- []*fiatrates.FiatRate)
	RemoveFiatRateListener(id string)
}

// Config is the configuration for the WebServer.
type Config struct {
	Units    UnitsController
	Settings SettingsStore
	Rates    RateStore
	// RateFeed is optional. If set, new rates are pushed to websocket
	// clients.
	RateFeed RateFeed
	// Currencies are the fiat currencies a user can select.
	Currencies []string
	Addr       string
	Logger     dex.Logger
	// Indent JSON responses.
	Indent bool
}

// WebServer is an http and websocket server for UI clients.
type WebServer struct {
	ctx        context.Context
	units      UnitsController
	settings   SettingsStore
	rates      RateStore
	rateFeed   RateFeed
	currencies []string
	addr       string
	mux        *chi.Mux
	srv        *http.Server
	indent     bool

	mtx     sync.RWMutex
	clients map[int32]*wsClient
}

// New is the constructor for a new WebServer.
func New(cfg *Config) (*WebServer, error) {
	if cfg.Units == nil || cfg.Settings == nil || cfg.Rates == nil {
		return nil, errors.New("units, settings and rates are required")
	}
	if cfg.Logger != nil {
		log = cfg.Logger
	}

	mux := chi.NewRouter()
	httpServer := &http.Server{
		Handler:      mux,
		ReadTimeout:  rpcTimeoutSeconds * time.Second, // slow requests should not hold connections opened
		WriteTimeout: rpcTimeoutSeconds * time.Second, // hung responses must die
	}

	s := &WebServer{
		ctx:        context.Background(),
		units:      cfg.Units,
		settings:   cfg.Settings,
		rates:      cfg.Rates,
		rateFeed:   cfg.RateFeed,
		currencies: cfg.Currencies,
		addr:       cfg.Addr,
		mux:        mux,
		srv:        httpServer,
		indent:     cfg.Indent,
		clients:    make(map[int32]*wsClient),
	}

	mux.Use(middleware.Recoverer)
	mux.Use(securityMiddleware)
	mux.Get("/ws", s.handleWS)
	mux.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Get("/units", s.apiUnits)
		r.Post("/units/cycle", s.apiCycleUnits)
		r.Post("/units/reset", s.apiResetUnits)
		r.Get("/amount", s.apiAmount)
		r.Get("/settings", s.apiSettings)
		r.Post("/settings", s.apiUpdateSettings)
		r.Get("/rates", s.apiRates)
	})

	return s, nil
}

// Run starts the web server and the notification relays. It blocks until
// the context is canceled or the listener fails.
func (s *WebServer) Run(ctx context.Context) {
	s.ctx = ctx
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		log.Errorf("Can't listen on %s. web server quitting: %v", s.addr, err)
		return
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		if err := s.srv.Shutdown(context.Background()); err != nil {
			log.Errorf("Problem shutting down web server: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.readUnits(ctx)
	}()

	if s.rateFeed != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.readRates(ctx)
		}()
	}

	log.Infof("Web server listening on http://%s", s.addr)
	err = s.srv.Serve(listener)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Warnf("unexpected (http.Server).Serve error: %v", err)
	}
	log.Infof("Web server off")

	// Shutdown does not deal with hijacked websocket connections.
	s.mtx.Lock()
	for _, cl := range s.clients {
		cl.Disconnect()
	}
	s.mtx.Unlock()

	wg.Wait()
}

// readUnits relays display unit changes to websocket clients.
func (s *WebServer) readUnits(ctx context.Context) {
	ch := make(chan units.Unit, 16)
	s.units.AddUnitsListener(listenerID, ch)
	defer s.units.RemoveUnitsListener(listenerID)
	for {
		select {
		case u := <-ch:
			s.notify(msgjson.UnitsRoute, u)
		case <-ctx.Done():
			return
		}
	}
}

// readRates relays new fiat rates to websocket clients.
func (s *WebServer) readRates(ctx context.Context) {
	ch := make(chan []*fiatrates.FiatRate, 4)
	s.rateFeed.AddFiatRateListener(listenerID, ch)
	defer s.rateFeed.RemoveFiatRateListener(listenerID)
	for {
		select {
		case rates, ok := <-ch:
			if !ok {
				return
			}
			s.notify(msgjson.RatesRoute, rates)
		case <-ctx.Done():
			return
		}
	}
}

// notify sends a notification to all websocket clients.
func (s *WebServer) notify(route string, payload any) {
	note, err := msgjson.NewNotification(route, payload)
	if err != nil {
		log.Errorf("%q notification encoding error: %v", route, err)
		return
	}
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	for _, cl := range s.clients {
		if err := cl.Send(note); err != nil {
			log.Debugf("Failed to send %q notification to %s: %v", route, cl.IP(), err)
		}
	}
}

// readPost unmarshals the request body into the provided interface.
func readPost(w http.ResponseWriter, r *http.Request, thing any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	r.Body.Close()
	if err != nil {
		log.Debugf("Error reading request body: %v", err)
		http.Error(w, "error reading JSON message", http.StatusBadRequest)
		return false
	}
	if err = json.Unmarshal(body, thing); err != nil {
		log.Debugf("failed to unmarshal JSON request: %v", err)
		http.Error(w, "failed to unmarshal JSON request", http.StatusBadRequest)
		return false
	}
	return true
}

// securityMiddleware adds security headers to the server responses.
func securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// writeJSON marshals the provided interface and writes the bytes to the
// ResponseWriter. The response code is assumed to be StatusOK.
func writeJSON(w http.ResponseWriter, thing any, indent bool) {
	writeJSONWithStatus(w, thing, http.StatusOK, indent)
}

// writeJSONWithStatus marshals the provided interface and writes the bytes to
// the ResponseWriter with the specified response code.
func writeJSONWithStatus(w http.ResponseWriter, thing any, code int, indent bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	encoder := json.NewEncoder(w)
	indentStr := ""
	if indent {
		indentStr = "    "
	}
	encoder.SetIndent("", indentStr)
	if err := encoder.Encode(thing); err != nil {
		log.Infof("JSON encode error: %v", err)
	}
}
