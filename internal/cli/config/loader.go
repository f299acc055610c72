package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/leapstack-labs/leapbridge/pkg/source"
)

// ConfigFileName is the default name of the config file.
const ConfigFileName = "leapbridge.yaml"

// EnvPrefix is the prefix for configuration environment variables, e.g.
// LEAPBRIDGE_SOURCE_PASSWORD or LEAPBRIDGE_LOG_LEVEL.
const EnvPrefix = "LEAPBRIDGE_"

// nestedPrefixes are the env var segments mapped to nested config keys:
// LEAPBRIDGE_SOURCE_USER -> source.user.
var nestedPrefixes = []string{"source_", "warehouse_"}

// findConfigFile finds the config file to use.
// Priority: explicit path > ./leapbridge.yaml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	return ""
}

// envKey transforms an environment variable name into a config key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, prefix := range nestedPrefixes {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			return strings.TrimSuffix(prefix, "_") + "." + rest
		}
	}
	return key
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"port":        8080,
		"log_level":   "info",
		"verbose":     false,
		"source.type": "postgres",
		"source.host": "localhost",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment variables (LEAPBRIDGE_ prefix)
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// Transform kebab-case to the dotted config key:
			// --source-host -> source.host, --log-level -> log_level
			key := f.Name
			for _, prefix := range []string{"source-", "warehouse-"} {
				if rest, ok := strings.CutPrefix(key, prefix); ok {
					return strings.TrimSuffix(prefix, "-") + "." + rest, posflag.FlagVal(flags, f)
				}
			}
			return strings.ReplaceAll(key, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Validate the source type against the connector registry
	if !source.IsRegistered(strings.ToLower(cfg.Source.Type)) {
		return nil, &source.UnknownSourceError{
			Type:      cfg.Source.Type,
			Available: source.ListConnectors(),
		}
	}

	return &cfg, nil
}
