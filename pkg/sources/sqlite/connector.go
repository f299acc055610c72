// Package sqlite provides a SQLite source connector for the bridge.
// It is mainly useful for local development and integration tests where a
// networked source store is not available.
package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/leapstack-labs/leapbridge/pkg/source"
	_ "modernc.org/sqlite" // sqlite driver
)

// Connector implements the source.Connector interface for SQLite.
type Connector struct {
	logger *slog.Logger
}

// New creates a new SQLite connector instance.
func New(logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Connector{logger: logger}
}

// DriverName returns the database/sql driver name.
func (c *Connector) DriverName() string {
	return "sqlite"
}

// Connect opens a scoped connection to a SQLite database file.
// Use ":memory:" as the path for an in-memory database.
func (c *Connector) Connect(ctx context.Context, cfg source.Config) (*source.Conn, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	c.logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &source.ConnectionError{Engine: "sqlite", Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &source.ConnectionError{Engine: "sqlite", Err: err}
	}

	return source.NewConn(db, c.logger), nil
}

// Ensure Connector implements source.Connector interface
var _ source.Connector = (*Connector)(nil)
