package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/setlife-network/zeus/client/units"
	"github.com/setlife-network/zeus/dex/config"
)

func TestResolveConfig(t *testing.T) {
	appData := filepath.Join(t.TempDir(), "app")

	cfg := DefaultConfig
	cfg.WebAddr = ""
	if err := ResolveConfig(appData, &cfg); err != nil {
		t.Fatalf("ResolveConfig error: %v", err)
	}
	if cfg.DBPath != filepath.Join(appData, dbFilename) {
		t.Fatalf("wrong default db path %q", cfg.DBPath)
	}
	if cfg.LogPath != filepath.Join(appData, "logs", logFilename) {
		t.Fatalf("wrong default log path %q", cfg.LogPath)
	}
	if cfg.WebAddr != "127.0.0.1:5760" {
		t.Fatalf("wrong default web address %q", cfg.WebAddr)
	}
	if cfg.OneShotUnit != "" {
		t.Fatalf("one-shot unit set without an amount")
	}
	if _, err := os.Stat(appData); err != nil {
		t.Fatalf("app data directory not created: %v", err)
	}

	tests := []struct {
		name     string
		amount   string
		unit     string
		wantUnit units.Unit
		wantErr  bool
	}{
		{"amount only", "1234", "", units.UnitSats, false},
		{"amount and unit", "1234", "btc", units.UnitBTC, false},
		{"unit only", "", "fiat", "", true},
		{"bad unit", "1234", "bits", "", true},
	}
	for _, tt := range tests {
		cfg := DefaultConfig
		cfg.Amount, cfg.Unit = tt.amount, tt.unit
		err := ResolveConfig(appData, &cfg)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: wanted error = %t, got %v", tt.name, tt.wantErr, err)
		}
		if err == nil && cfg.OneShotUnit != tt.wantUnit {
			t.Fatalf("%s: wanted unit %s, got %s", tt.name, tt.wantUnit, cfg.OneShotUnit)
		}
	}
}

func TestResolveCLIConfigPaths(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig
	cfg.AppData = dir
	appData, configPath := ResolveCLIConfigPaths(&cfg)
	if appData != dir || configPath != filepath.Join(dir, configFilename) {
		t.Fatalf("wrong paths %q, %q", appData, configPath)
	}
}

func TestWriteDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFilename)
	cfg := DefaultConfig
	cfg.Amount = "1"
	wrote, err := WriteDefaultConfigFile(path, &cfg)
	if err != nil || !wrote {
		t.Fatalf("WriteDefaultConfigFile: %t, %v", wrote, err)
	}
	opts, err := config.Parse(path)
	if err != nil {
		t.Fatalf("error parsing written config: %v", err)
	}
	if opts["webaddr"] != cfg.WebAddr || opts["log"] != defaultLogLevel {
		t.Fatalf("wrong options %v", opts)
	}
	for _, key := range []string{"appdata", "config", "amount", "unit", "version"} {
		if _, found := opts[key]; found {
			t.Fatalf("command line option %q written to config file", key)
		}
	}

	// An existing file is left alone.
	if wrote, err = WriteDefaultConfigFile(path, &cfg); err != nil || wrote {
		t.Fatalf("existing file rewritten: %t, %v", wrote, err)
	}

	// The file parses with go-flags.
	parsed := DefaultConfig
	os.Args = []string{"zeusunits"}
	if err := ParseFileConfig(path, &parsed); err != nil {
		t.Fatalf("ParseFileConfig error: %v", err)
	}
	if parsed.WebAddr != cfg.WebAddr {
		t.Fatalf("wrong parsed web address %q", parsed.WebAddr)
	}
}

func TestInitLogging(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", logFilename)
	lm, closeFn, err := InitLogging(logPath, "info,UNIT=trace", false, true)
	if err != nil {
		t.Fatalf("InitLogging error: %v", err)
	}
	lm.Logger(LogUnits).Tracef("trace message")
	closeFn()
	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("error reading log file: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("nothing logged")
	}

	if _, _, err = InitLogging(logPath, "info,UNIT=loud", false, true); err == nil {
		t.Fatalf("no error for bad log level")
	}
}
