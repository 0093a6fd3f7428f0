// Package logging builds the leveled logger shared by the CLI and the generator.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

const DefaultLevel = "warn"

// New returns a logger writing to w at the named level. Unknown level names
// fall back to DefaultLevel.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.WarnLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:  lvl,
		Prefix: "kiln",
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// LevelFor resolves the effective level from the configured level and the
// --verbose/--quiet flags. --quiet wins over --verbose.
func LevelFor(configured string, verbose, quiet bool) string {
	switch {
	case quiet:
		return "error"
	case verbose:
		return "debug"
	case configured == "":
		return DefaultLevel
	default:
		return configured
	}
}
