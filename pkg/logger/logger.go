package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = newLogger(os.Stderr, "console")
)

func newLogger(w io.Writer, format string) zerolog.Logger {
	if format != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
}

// Configure replaces the global logger. Format is "console" or "json";
// level is one of debug, info, warn, error.
func Configure(w io.Writer, format, level string) {
	l := newLogger(w, strings.ToLower(format))
	mu.Lock()
	log = l.Level(parseLevel(level))
	mu.Unlock()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func write(ev func(*zerolog.Logger) *zerolog.Event, component, message string, fields map[string]interface{}) {
	mu.RLock()
	l := log
	mu.RUnlock()

	e := ev(&l)
	if component != "" {
		e = e.Str("component", component)
	}
	if len(fields) > 0 {
		e = e.Fields(fields)
	}
	e.Msg(message)
}

func DebugCF(component, message string, fields map[string]interface{}) {
	write((*zerolog.Logger).Debug, component, message, fields)
}

func InfoCF(component, message string, fields map[string]interface{}) {
	write((*zerolog.Logger).Info, component, message, fields)
}

func WarnCF(component, message string, fields map[string]interface{}) {
	write((*zerolog.Logger).Warn, component, message, fields)
}

func ErrorCF(component, message string, fields map[string]interface{}) {
	write((*zerolog.Logger).Error, component, message, fields)
}
