// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/setlife-network/zeus/client/app"
	"github.com/setlife-network/zeus/client/db"
	"github.com/setlife-network/zeus/client/db/bolt"
	"github.com/setlife-network/zeus/client/fiat"
	"github.com/setlife-network/zeus/client/settings"
	"github.com/setlife-network/zeus/client/units"
	"github.com/setlife-network/zeus/client/webserver"
	"github.com/setlife-network/zeus/dex"
	"github.com/setlife-network/zeus/dex/fiatrates"
	"github.com/setlife-network/zeus/dex/ws"
	"golang.org/x/sync/errgroup"
)

// oneShotRatesTimeout bounds the wait for the first fiat rates when
// formatting a single amount.
const oneShotRatesTimeout = 15 * time.Second

var log = dex.Disabled

func main() {
	// Wrap the actual main so defers run in it.
	err := mainCore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	os.Exit(0)
}

func mainCore() error {
	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := configure()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	oneShot := cfg.Amount != ""

	// One-shot output goes to the terminal, so logs only go to the file.
	logMaker, closeLogger, err := app.InitLogging(cfg.LogPath, cfg.DebugLevel, !oneShot, !cfg.LocalLogs)
	if err != nil {
		return err
	}
	defer closeLogger()

	log = logMaker.Logger(app.LogApp)
	log.Infof("%s version %s (Go version %s)", appName, app.Version, runtime.Version())

	bolt.UseLogger(logMaker.Logger(app.LogDB))
	settings.UseLogger(logMaker.Logger(app.LogSettings))
	fiat.UseLogger(logMaker.Logger(app.LogFiat))
	ws.UseLogger(logMaker.SubLogger(app.LogWeb, "WS"))

	// Roll back completed startup steps if a later one fails.
	closer := dex.NewErrorCloser()
	defer closer.Done(log)

	boltDB, err := bolt.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("error opening settings database: %w", err)
	}
	closer.Add(boltDB.Close)

	settingsStore, err := settings.New(boltDB)
	if err != nil {
		return fmt.Errorf("error loading settings: %w", err)
	}
	if cfg.Fiat != "" {
		if err := settingsStore.UpdateSettings(func(s *db.Settings) { s.Fiat = cfg.Fiat }); err != nil {
			return fmt.Errorf("error setting fiat currency %q: %w", cfg.Fiat, err)
		}
	}

	oracle, err := fiatrates.NewFiatOracle(cfg.Config, logMaker.Logger(app.LogRates))
	if err != nil {
		return fmt.Errorf("error creating fiat rate oracle: %w", err)
	}
	fiatStore := fiat.NewStore(oracle, settingsStore)
	controller := units.NewController(settingsStore, fiatStore, logMaker.Logger(app.LogUnits))

	if oneShot {
		closer.Success()
		defer boltDB.Close()
		return formatOnce(appCtx, cfg, controller, settingsStore, oracle)
	}

	var web *webserver.WebServer
	if !cfg.NoWeb {
		web, err = webserver.New(&webserver.Config{
			Units:      controller,
			Settings:   settingsStore,
			Rates:      fiatStore,
			RateFeed:   oracle,
			Currencies: fiat.Currencies(),
			Addr:       cfg.WebAddr,
			Logger:     logMaker.Logger(app.LogWeb),
			Indent:     cfg.Indent,
		})
		if err != nil {
			return fmt.Errorf("error creating web server: %w", err)
		}
	}

	closer.Success()

	// Catch interrupt signal (e.g. ctrl+c) to shut down.
	killChan := make(chan os.Signal, 1)
	signal.Notify(killChan, os.Interrupt)
	go func() {
		<-killChan
		log.Infof("Shutting down...")
		cancel()
	}()

	g, ctx := errgroup.WithContext(appCtx)
	g.Go(func() error {
		boltDB.Run(ctx)
		return nil
	})
	g.Go(func() error {
		oracle.Run(ctx)
		return nil
	})
	g.Go(func() error {
		fiatStore.Run(ctx, oracle)
		return nil
	})
	if web != nil {
		g.Go(func() error {
			web.Run(ctx)
			// A web server that quits on its own, e.g. failing to listen,
			// takes the app down with it.
			if ctx.Err() == nil {
				return errors.New("web server stopped unexpectedly")
			}
			return nil
		})
	} else {
		g.Go(func() error {
			logUnitChanges(ctx, controller)
			return nil
		})
	}

	err = g.Wait()
	log.Info("Exiting zeusunits main.")
	return err
}

// logUnitChanges logs display unit changes until the context is canceled.
// It keeps a headless daemon observable.
func logUnitChanges(ctx context.Context, c *units.Controller) {
	const listenerID = "main"
	ch := make(chan units.Unit, 4)
	c.AddUnitsListener(listenerID, ch)
	defer c.RemoveUnitsListener(listenerID)
	log.Infof("Display unit is %s", c.Units())
	for {
		select {
		case u := <-ch:
			log.Infof("Display unit changed to %s", u)
		case <-ctx.Done():
			return
		}
	}
}

// formatOnce prints a single formatted amount and returns. Fiat rates are
// fetched only when the fiat unit is requested and fiat is enabled.
func formatOnce(ctx context.Context, cfg *app.Config, c *units.Controller, s *settings.Store, oracle *fiatrates.Oracle) error {
	if cfg.OneShotUnit == units.UnitFiat && !settings.FiatDisabled(s.FiatCurrency()) {
		waitForRates(ctx, oracle)
	}

	display, err := c.DescribeString(cfg.Amount, cfg.OneShotUnit)
	if errors.Is(err, units.ErrInvalidAmount) {
		return err
	}
	if err != nil {
		// Fiat problems still produce a best effort string below.
		color.New(color.FgYellow).Fprintf(os.Stderr, "warning: %v\n", err)
	}

	out := c.FormatString(cfg.Amount, cfg.OneShotUnit)
	if display != nil && display.Negative {
		color.New(color.FgRed, color.Bold).Println(out)
	} else {
		color.New(color.FgGreen, color.Bold).Println(out)
	}
	return nil
}

// waitForRates runs the oracle until the first rates arrive or
// oneShotRatesTimeout passes.
func waitForRates(ctx context.Context, oracle *fiatrates.Oracle) {
	ctx, cancel := context.WithTimeout(ctx, oneShotRatesTimeout)
	defer cancel()

	const listenerID = "oneshot"
	ch := make(chan []*fiatrates.FiatRate, 1)
	oracle.AddFiatRateListener(listenerID, ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		oracle.Run(ctx)
	}()

	select {
	case rates, ok := <-ch:
		if ok {
			log.Debugf("Received %d fiat rates", len(rates))
		}
	case <-ctx.Done():
		log.Warnf("Timed out waiting for fiat rates")
	}
	cancel()
	<-done
}
