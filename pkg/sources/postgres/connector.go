// Package postgres provides a PostgreSQL source connector for the bridge.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/leapstack-labs/leapbridge/pkg/source"
)

// Connector implements the source.Connector interface for PostgreSQL.
type Connector struct {
	logger *slog.Logger
}

// New creates a new PostgreSQL connector instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Connector {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Connector{logger: logger}
}

// DriverName returns the database/sql driver name.
func (c *Connector) DriverName() string {
	return "pgx"
}

// Connect opens a scoped connection to PostgreSQL and verifies it with a
// ping. Authentication failures and unreachable hosts surface as a
// source.ConnectionError.
func (c *Connector) Connect(ctx context.Context, cfg source.Config) (*source.Conn, error) {
	dsn := buildPostgresDSN(cfg)

	c.logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, &source.ConnectionError{Engine: "postgres", Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &source.ConnectionError{Engine: "postgres", Err: err}
	}

	return source.NewConn(db, c.logger), nil
}

// buildPostgresDSN constructs a PostgreSQL connection string.
func buildPostgresDSN(cfg source.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.User != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.User)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// Ensure Connector implements source.Connector interface
var _ source.Connector = (*Connector)(nil)
