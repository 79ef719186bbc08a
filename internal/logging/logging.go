// Package logging hands out component loggers that share one level and output.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/labstack/gommon/log"
)

// Header is the JSON line header used by every component logger.
const Header = `{"time":"${time_rfc3339_nano}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`

var (
	mu      sync.Mutex
	level             = log.INFO
	output  io.Writer = os.Stderr
	loggers           = make(map[string]*log.Logger)
)

// New returns the logger for a component, creating it on first use.
func New(component string) *log.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[component]; ok {
		return l
	}

	l := log.New(component)
	l.SetHeader(Header)
	l.SetLevel(level)
	l.SetOutput(output)
	loggers[component] = l
	return l
}

// ParseLevel maps a config string to a log level. Unknown values mean info.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// SetLevel applies a level to all existing and future component loggers.
func SetLevel(s string) {
	mu.Lock()
	defer mu.Unlock()

	level = ParseLevel(s)
	for _, l := range loggers {
		l.SetLevel(level)
	}
}

// SetOutput redirects all component loggers. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	for _, l := range loggers {
		l.SetOutput(w)
	}
}
