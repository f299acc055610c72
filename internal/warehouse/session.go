// Package warehouse manages the process-lifetime session against the
// target warehouse (DuckDB).
//
// Unlike source-store connections, which are opened and closed per command,
// exactly one warehouse session exists for the life of the process. It is
// created at startup, shared by every replication command, and torn down on
// shutdown. The underlying handle is not assumed safe for concurrent
// statement execution, so Exec serializes access with a mutex.
package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Config holds the warehouse location and the compute context selected at
// startup.
type Config struct {
	// Path is the DuckDB database file. Empty means in-memory.
	Path string `koanf:"path"`

	// Context is the identifier passed to the USE statement at startup.
	// Empty skips context selection.
	Context string `koanf:"context"`
}

// Session is the process-wide warehouse session.
type Session struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// NewSession wraps an open database handle as a warehouse session.
// If logger is nil, a discard logger is used.
func NewSession(db *sql.DB, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{db: db, logger: logger}
}

// Connect opens the warehouse session and verifies it with a ping.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Session, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	return NewSession(db, logger), nil
}

// UseContext selects the active compute context for the session. It runs
// once at startup; a failure here is fatal and the process must not begin
// serving traffic.
func (s *Session) UseContext(ctx context.Context, name string) error {
	s.logger.Info("selecting warehouse context", slog.String("context", name))
	if err := s.Exec(ctx, fmt.Sprintf("USE %s", name)); err != nil {
		return fmt.Errorf("cannot use warehouse context %s: %w", name, err)
	}
	return nil
}

// Exec runs a statement against the session. Calls are serialized because
// the session is shared by all concurrent requests.
func (s *Session) Exec(ctx context.Context, sqlStr string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("warehouse session not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute warehouse statement: %w", err)
	}
	return nil
}

// Close tears down the session. Called on process shutdown.
func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.logger.Debug("closing warehouse session")
	return s.db.Close()
}
