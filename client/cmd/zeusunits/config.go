// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/setlife-network/zeus/client/app"
)

const appName = "zeusunits"

func configure() (*app.Config, error) {
	// Pre-parse the command line options to see if an alternative config file
	// or the version flag was specified.
	iniCfg := app.DefaultConfig
	preCfg := iniCfg
	if err := app.ParseCLIConfig(&preCfg); err != nil {
		return nil, err
	}

	if preCfg.ShowVer {
		fmt.Printf("%s version %s (Go version %s %s/%s)\n",
			appName, app.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	appData, configPath := app.ResolveCLIConfigPaths(&preCfg)

	// A starter config file is only written for daemon runs.
	if preCfg.Amount == "" {
		defCfg := app.DefaultConfig
		wrote, err := app.WriteDefaultConfigFile(configPath, &defCfg)
		if err != nil {
			return nil, err
		}
		if wrote {
			fmt.Printf("Wrote default config file to %s\n", configPath)
		}
	}

	if err := app.ParseFileConfig(configPath, &iniCfg); err != nil {
		return nil, err
	}

	cfg := &iniCfg
	return cfg, app.ResolveConfig(appData, cfg)
}
