package bridge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapbridge/pkg/envelope"
)

// insert runs one parameterized statement once per value tuple inside a
// single transaction. An empty tuple list is a no-op success: no connection
// is opened and no statement is issued. Any failure rolls the transaction
// back before the connection is released, so no partial writes persist.
func (b *Bridge) insert(ctx context.Context, cmd envelope.Command) (any, error) {
	sqlText, err := cmd.StringArg(0)
	if err != nil {
		return nil, err
	}
	tuples, err := cmd.TupleListArg(1)
	if err != nil {
		return nil, err
	}

	if len(tuples) == 0 {
		return SuccessMarker, nil
	}

	b.logger.Info("executing batch insert",
		slog.String("sql", sqlText),
		slog.Int("tuples", len(tuples)))

	conn, err := b.openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	tx, err := conn.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, tuple := range tuples {
		if _, err := tx.ExecContext(ctx, sqlText, tuple...); err != nil {
			return nil, fmt.Errorf("insert tuple %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return SuccessMarker, nil
}
