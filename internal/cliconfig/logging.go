package cliconfig

import (
	"os"

	"github.com/rs/zerolog"

	logAdapter "github.com/insulinmanager/dosectl/internal/adapters/log"
)

// Logger returns the CLI's console logger on stderr at the given level.
func Logger(level zerolog.Level) zerolog.Logger {
	return logAdapter.NewConsoleLogger(os.Stderr, level)
}
