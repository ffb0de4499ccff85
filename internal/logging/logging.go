// Package logging configures the diagnostic logger. User-facing output goes
// through internal/ui; this logger is for what --verbose shows on stderr.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// New returns a console logger writing to w. Verbose enables debug level,
// otherwise only warnings and errors are emitted.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.TimeOnly,
		NoColor:    !isTerminal(w),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// WithLogger attaches a logger to ctx; read it back with zerolog.Ctx
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
