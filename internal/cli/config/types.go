// Package config loads the bridge configuration from defaults, an optional
// yaml file, environment variables, and CLI flags.
package config

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapbridge/internal/warehouse"
	"github.com/leapstack-labs/leapbridge/pkg/source"
)

// Config is the resolved bridge configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port int `koanf:"port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	Verbose bool `koanf:"verbose"`

	Source    source.Config    `koanf:"source"`
	Warehouse warehouse.Config `koanf:"warehouse"`
}

// ParseLevel maps a config log level string to a slog level.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setting is one row of the diagnostic configuration summary.
type Setting struct {
	Key   string
	Value string
}

// Summary returns the resolved configuration for diagnostic printout, with
// credentials masked.
func (c *Config) Summary() []Setting {
	mask := func(s string) string {
		if s == "" {
			return notSet
		}
		return "********"
	}

	return []Setting{
		{"port", strconv.Itoa(c.Port)},
		{"log_level", c.LogLevel},
		{"source.type", c.Source.Type},
		{"source.host", orNotSet(c.Source.Host)},
		{"source.port", orNotSet(itoa(c.Source.Port))},
		{"source.user", orNotSet(c.Source.User)},
		{"source.password", mask(c.Source.Password)},
		{"source.database", orNotSet(c.Source.Database)},
		{"source.path", orNotSet(c.Source.Path)},
		{"warehouse.path", or(c.Warehouse.Path, ":memory:")},
		{"warehouse.context", orNotSet(c.Warehouse.Context)},
	}
}

const notSet = "(not set)"

func orNotSet(s string) string { return or(s, notSet) }

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func itoa(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
