// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package app

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/jessevdk/go-flags"
	"github.com/setlife-network/zeus/client/units"
	"github.com/setlife-network/zeus/dex"
	"github.com/setlife-network/zeus/dex/config"
	"github.com/setlife-network/zeus/dex/fiatrates"
)

const (
	// Version is the application version.
	Version = "0.1.0"

	defaultWebHost  = "127.0.0.1"
	defaultWebPort  = "5760"
	defaultLogLevel = "info"
	configFilename  = "zeusunits.conf"
	dbFilename      = "zeusunits.db"
	logFilename     = "zeusunits.log"
)

var (
	defaultApplicationDirectory = dcrutil.AppDataDir("zeusunits", false)
	defaultConfigPath           = filepath.Join(defaultApplicationDirectory, configFilename)
)

// WebConfig encapsulates the configuration needed for the web server.
type WebConfig struct {
	WebAddr string `long:"webaddr" description:"HTTP server address"`
	NoWeb   bool   `long:"noweb" description:"Disable the web server."`
	Indent  bool   `long:"indent" description:"Indent JSON responses."`
}

// LogConfig encapsulates the logging-related settings.
type LogConfig struct {
	LogPath    string `long:"logpath" description:"A file to save app logs"`
	DebugLevel string `long:"log" description:"Logging level {trace, debug, info, warn, error, critical}. Per-subsystem levels can follow, e.g. info,UNIT=debug"`
	LocalLogs  bool   `long:"loglocal" description:"Use local time zone time stamps in log entries."`
}

// DisplayConfig sets the initial display settings and one-shot formatting.
type DisplayConfig struct {
	Fiat string `long:"fiat" description:"Fiat currency code to select at startup, e.g. USD. Disabled turns fiat display off. Unset keeps the saved setting."`
	// Amount and Unit only make sense on the command line.
	Amount string `long:"amount" description:"Print the amount, in sats, in the chosen unit and exit." no-ini:"true"`
	Unit   string `long:"unit" description:"Unit for --amount {sats, BTC, fiat}. Defaults to sats." no-ini:"true"`
}

// Config is the application configuration definition.
type Config struct {
	fiatrates.Config
	WebConfig
	LogConfig
	DisplayConfig
	// AppData and ConfigPath should be parsed from the command-line,
	// as it makes no sense to set these in the config file itself. If no values
	// are assigned, defaults will be used.
	AppData    string `long:"appdata" description:"Path to application directory." no-ini:"true"`
	ConfigPath string `long:"config" description:"Path to an INI configuration file." no-ini:"true"`
	DBPath     string `long:"db" description:"Database filepath. Database will be created if it does not exist."`
	ShowVer    bool   `short:"V" long:"version" description:"Display version information and exit" no-ini:"true"`

	// OneShotUnit is the parsed Unit. It is set by ResolveConfig.
	OneShotUnit units.Unit `no-ini:"true"`
}

// DefaultConfig is the configuration before any flags or config file are
// parsed.
var DefaultConfig = Config{
	AppData:    defaultApplicationDirectory,
	ConfigPath: defaultConfigPath,
	LogConfig:  LogConfig{DebugLevel: defaultLogLevel},
	WebConfig:  WebConfig{WebAddr: net.JoinHostPort(defaultWebHost, defaultWebPort)},
}

// ParseCLIConfig parses the command-line arguments into the provided struct
// with go-flags tags. If the --help flag has been passed, the struct is
// described back to the terminal and the program exits using os.Exit.
func ParseCLIConfig(cfg any) error {
	preParser := flags.NewParser(cfg, flags.HelpFlag|flags.PassDoubleDash)
	_, flagerr := preParser.Parse()

	if flagerr != nil {
		var e *flags.Error
		isFlagErr := errors.As(flagerr, &e)
		if isFlagErr && e.Type == flags.ErrHelp {
			preParser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		preParser.WriteHelp(os.Stderr)
		return flagerr
	}
	return nil
}

// ResolveCLIConfigPaths resolves the app data directory path and the
// configuration file path from the CLI config, (presumably parsed with
// ParseCLIConfig).
func ResolveCLIConfigPaths(cfg *Config) (appData, configPath string) {
	if cfg.AppData != defaultApplicationDirectory {
		cfg.AppData = dex.CleanAndExpandPath(cfg.AppData)
		// If the app directory has been changed, but the config file path hasn't,
		// reform the config file path with the new directory.
		if cfg.ConfigPath == defaultConfigPath {
			cfg.ConfigPath = filepath.Join(cfg.AppData, configFilename)
		}
	}
	cfg.ConfigPath = dex.CleanAndExpandPath(cfg.ConfigPath)
	return cfg.AppData, cfg.ConfigPath
}

// WriteDefaultConfigFile writes a starter config file at path if no file
// exists there yet.
func WriteDefaultConfigFile(path string, cfg *Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := config.WriteDefaultFile(path, cfg); err != nil {
		return false, fmt.Errorf("error writing default config file: %w", err)
	}
	return true, nil
}

// ParseFileConfig parses the INI file into the provided struct with go-flags
// tags. The CLI args are then parsed, and take precedence over the file values.
func ParseFileConfig(path string, cfg any) error {
	parser := flags.NewParser(cfg, flags.Default)
	err := flags.NewIniParser(parser).ParseFile(path)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintln(os.Stderr, err)
			parser.WriteHelp(os.Stderr)
			return err
		}
		// Missing file is not an error.
	}

	// Parse command line options again to ensure they take precedence.
	if _, err = parser.Parse(); err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return err
	}
	return nil
}

// ResolveConfig sets derivative fields of the Config struct using the specified
// app data directory (presumably returned from ResolveCLIConfigPaths). Some
// unset values are given defaults.
func ResolveConfig(appData string, cfg *Config) error {
	cfg.AppData = appData

	if cfg.Unit != "" && cfg.Amount == "" {
		return fmt.Errorf("--unit requires --amount")
	}
	if cfg.Amount != "" {
		cfg.OneShotUnit = units.UnitSats
		if cfg.Unit != "" {
			u, err := units.ParseUnit(cfg.Unit)
			if err != nil {
				return err
			}
			cfg.OneShotUnit = u
		}
	}

	if cfg.WebAddr == "" {
		cfg.WebAddr = net.JoinHostPort(defaultWebHost, defaultWebPort)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(appData, dbFilename)
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(appData, "logs", logFilename)
	}
	cfg.DBPath = dex.CleanAndExpandPath(cfg.DBPath)
	cfg.LogPath = dex.CleanAndExpandPath(cfg.LogPath)
	return os.MkdirAll(appData, 0700)
}
