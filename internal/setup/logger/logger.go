package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// New builds the process logger. Level comes from LOG_LEVEL when the
// argument is empty; unknown levels fall back to info.
func New(level string) zerolog.Logger {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(os.Stderr).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// NewConsole builds a human-oriented logger for CLI entrypoints.
func NewConsole(out io.Writer, level string) zerolog.Logger {
	base := New(level)
	return base.Output(zerolog.ConsoleWriter{Out: out})
}
