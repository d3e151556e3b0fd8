// Package logging builds the logger shared across the tool.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to w at the given level. Timestamps use a
// compact wall-clock format since invocations are short-lived.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
}

// ParseLevel maps a configured level name to a log level. Unknown names
// fall back to info so a typo never silences the tool.
func ParseLevel(name string) log.Level {
	switch name {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
