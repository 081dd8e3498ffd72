// Package logging wires up the structured logger shared by the build and
// search processes. The teacher package has no logger of its own (its
// cmd/*/main.go entry points use bare fmt.Printf diagnostics); this adds the
// ambient structured-logging concern on top using the pack's convention.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console-friendly zerolog.Logger writing to w (Default passes
// os.Stderr). verbose enables debug-level output.
func New(w io.Writer, verbose bool) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Default returns the process-wide logger writing to stderr at info level.
func Default() zerolog.Logger {
	return New(os.Stderr, false)
}
