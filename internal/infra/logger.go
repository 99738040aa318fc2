package infra

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger constructs a zerolog.Logger with sane defaults for the service.
func NewLogger(appEnv string) zerolog.Logger {
	return newLogger(appEnv, os.Stdout, isatty.IsTerminal(os.Stdout.Fd()))
}

// NewStderrLogger is NewLogger for command-line tools whose stdout carries results.
func NewStderrLogger(appEnv string) zerolog.Logger {
	return newLogger(appEnv, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
}

func newLogger(appEnv string, out io.Writer, terminal bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Logger()

	if appEnv == "development" || terminal {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: !terminal})
	}

	return logger
}

// Logger aliases the zerolog.Logger so callers outside the infra package can
// depend on the logging contract without importing the third-party module
// directly.
type Logger = zerolog.Logger
