// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
	"github.com/setlife-network/zeus/dex"
)

const (
	maxLogRolls = 16
	// Log file size threshold for rotation, in KiB.
	logRollSize = 32 * 1024
)

// Subsystem logger names.
const (
	LogUnits    = "UNIT"
	LogFiat     = "FIAT"
	LogRates    = "RATE"
	LogDB       = "DB"
	LogWeb      = "WEB"
	LogApp      = "APP"
	LogSettings = "SETS"
)

// Subsystems that are noisy at the default level.
var defaultLogLevelMap = map[string]dex.Level{
	LogRates: dex.LevelInfo,
}

// logWriter implements an io.Writer that outputs to a rotating log file.
type logWriter struct {
	*rotator.Rotator
	stdout io.Writer
}

// Write writes the data in p to the log file.
func (w logWriter) Write(p []byte) (n int, err error) {
	if w.stdout != nil {
		w.stdout.Write(p)
	}
	return w.Rotator.Write(p)
}

// InitLogging initializes the logging rotater to write logs to logFile and
// create roll files in the same directory. The returned function closes the
// rotator and should be called on shutdown.
func InitLogging(logFilename, lvl string, stdout bool, utc bool) (*dex.LoggerMaker, func(), error) {
	logDirectory := filepath.Dir(logFilename)
	if err := os.MkdirAll(logDirectory, 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logRotator, err := rotator.New(logFilename, logRollSize, false, maxLogRolls)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create file rotator: %w", err)
	}
	w := logWriter{Rotator: logRotator}
	if stdout {
		w.stdout = os.Stdout
	}
	lm, err := dex.NewLoggerMaker(w, lvl, utc)
	if err != nil {
		logRotator.Close()
		return nil, nil, fmt.Errorf("failed to create custom logger: %w", err)
	}
	lm.SetLevelsFromMap(defaultLogLevelMap)
	return lm, func() {
		logRotator.Close()
	}, nil
}
