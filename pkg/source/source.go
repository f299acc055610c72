// Package source defines the connector contract for the bridge's source
// store and the scoped connection handed to command handlers.
//
// Concrete connector implementations live in pkg/sources/ subdirectories
// and register themselves with the registry in their init() functions.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// Config holds the credentials and location of the source store.
type Config struct {
	Type string `koanf:"type"` // postgres, sqlite

	// Network databases
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`

	// File-based databases (SQLite)
	Path string `koanf:"path"`

	// Additional driver-specific options
	Options map[string]string `koanf:"options"`
}

// Conn is a source-store connection scoped to a single command. The caller
// that opens it owns it and must Close it on every exit path.
type Conn struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewConn wraps an open database handle as a scoped connection.
// If logger is nil, a discard logger is used.
func NewConn(db *sql.DB, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Conn{DB: db, logger: logger}
}

// Close releases the connection. Safe to call with a nil receiver so that
// callers can defer it unconditionally.
func (c *Conn) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	c.logger.Debug("closing source connection")
	return c.DB.Close()
}

// Connector opens scoped connections to a particular source-store engine.
type Connector interface {
	// Connect opens a new connection and verifies it with a ping.
	Connect(ctx context.Context, cfg Config) (*Conn, error)

	// DriverName returns the database/sql driver name used by the engine.
	DriverName() string
}

// ConnectionError wraps a failure to open or verify a source connection,
// typically bad credentials or an unreachable host.
type ConnectionError struct {
	Engine string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to %s source: %v", e.Engine, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
