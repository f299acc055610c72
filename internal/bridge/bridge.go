// Package bridge dispatches envelope commands to their handlers.
//
// Each command runs against one of two backends with different resource
// lifetimes: source-store commands open a scoped connection for the
// duration of a single command, while the replication command also writes
// through the process-lifetime warehouse session. Command-level failures
// are rendered into the failing command's response slot and never abort
// sibling commands or the process.
package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapbridge/internal/warehouse"
	"github.com/leapstack-labs/leapbridge/pkg/envelope"
	"github.com/leapstack-labs/leapbridge/pkg/source"
)

// Kind identifies a command handler.
type Kind string

// Command kinds, one per endpoint.
const (
	KindQuery  Kind = "query"
	KindExec   Kind = "execute"
	KindInsert Kind = "insert"
	KindCopy   Kind = "copy_to_warehouse"
)

// SuccessMarker is the result payload for commands with no result set.
const SuccessMarker = "SUCCESS"

// Config holds the bridge's collaborators.
type Config struct {
	Connector source.Connector
	SourceCfg source.Config
	Session   *warehouse.Session
	Logger    *slog.Logger
}

// Bridge routes commands to handlers and owns the handler-boundary error
// policy.
type Bridge struct {
	connector source.Connector
	sourceCfg source.Config
	session   *warehouse.Session
	logger    *slog.Logger
}

// New creates a bridge. If cfg.Logger is nil, a discard logger is used.
func New(cfg Config) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bridge{
		connector: cfg.Connector,
		sourceCfg: cfg.SourceCfg,
		session:   cfg.Session,
		logger:    logger,
	}
}

// Dispatch runs every command in the envelope through the handler for the
// given kind and assembles the response. A failing command yields an
// "Error: ..." payload in its own slot; the remaining commands still run.
func (b *Bridge) Dispatch(ctx context.Context, kind Kind, env *envelope.Envelope) *envelope.Response {
	resp := &envelope.Response{}
	for _, cmd := range env.Commands {
		payload, err := b.run(ctx, kind, cmd)
		if err != nil {
			b.logger.Error("command failed",
				slog.String("kind", string(kind)),
				slog.Int("index", cmd.Index),
				slog.Any("error", err))
			resp.Add(cmd.Index, fmt.Sprintf("Error: %s", err))
			continue
		}
		resp.Add(cmd.Index, payload)
	}
	return resp
}

func (b *Bridge) run(ctx context.Context, kind Kind, cmd envelope.Command) (any, error) {
	switch kind {
	case KindQuery:
		return b.query(ctx, cmd)
	case KindExec:
		return b.execute(ctx, cmd)
	case KindInsert:
		return b.insert(ctx, cmd)
	case KindCopy:
		return b.copyToWarehouse(ctx, cmd)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, kind)
	}
}

// openSource acquires a connection scoped to a single command. The caller
// must Close it on every exit path.
func (b *Bridge) openSource(ctx context.Context) (*source.Conn, error) {
	return b.connector.Connect(ctx, b.sourceCfg)
}

// VerifySource checks source-store connectivity with a trivial query.
// It is diagnostic only: a failure at startup is logged and does not block
// serving, asymmetric with the fatal warehouse-context selection.
func (b *Bridge) VerifySource(ctx context.Context) error {
	conn, err := b.openSource(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	var one int
	if err := conn.DB.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("source connectivity check failed: %w", err)
	}

	b.logger.Info("successfully connected to source store", slog.String("type", b.sourceCfg.Type))
	return nil
}
