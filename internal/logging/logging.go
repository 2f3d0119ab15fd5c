// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init installs a text logger on stderr. Only warnings and errors are shown
// unless verbose is set, in which case debug output is enabled.
func Init(verbose bool) {
	initWithWriter(os.Stderr, verbose)
}

func initWithWriter(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}
