// Package logging builds the leveled logger shared by the CLI, the ingestion
// pipeline and the HTTP view.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

const header = "${time_rfc3339} ${level} ${prefix}"

// ParseLevel maps a config level name to a gommon level.
func ParseLevel(level string) (log.Lvl, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DEBUG, nil
	case "", "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off", "none":
		return log.OFF, nil
	default:
		return log.INFO, fmt.Errorf("unknown log level %q", level)
	}
}

// New returns a logger writing to stderr, so report output on stdout stays clean.
func New(prefix, level string) (*log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewWithOutput(prefix, lvl, os.Stderr), nil
}

// NewWithOutput returns a logger writing to w.
func NewWithOutput(prefix string, lvl log.Lvl, w io.Writer) *log.Logger {
	l := log.New(prefix)
	l.SetHeader(header)
	l.SetLevel(lvl)
	l.SetOutput(w)
	return l
}

// Discard returns a logger that drops everything. Used when callers pass no logger.
func Discard() *log.Logger {
	return NewWithOutput("", log.OFF, io.Discard)
}
