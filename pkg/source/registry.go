package source

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Connector)
)

// Register adds a connector factory to the registry.
// Called by connector implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Connector) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a connector factory by name.
func Get(name string) (func(*slog.Logger) Connector, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// NewConnector creates a connector for the configured source type.
// The logger parameter is passed to the connector constructor (nil uses a
// discard logger).
func NewConnector(cfg Config, logger *slog.Logger) (Connector, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("source type not specified")
	}

	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownSourceError{
			Type:      cfg.Type,
			Available: ListConnectors(),
		}
	}
	return factory(logger), nil
}

// ListConnectors returns all registered connector names (sorted).
func ListConnectors() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a source type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownSourceError is returned when an unknown source type is requested.
type UnknownSourceError struct {
	Type      string
	Available []string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source type %q\nAvailable sources: %v\nHint: Check your source.type in leapbridge.yaml", e.Type, e.Available)
}
