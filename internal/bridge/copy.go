package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapbridge/pkg/envelope"
	"github.com/leapstack-labs/leapbridge/pkg/literal"
)

// copyToWarehouse replicates an entire source table into the warehouse.
//
// The whole table is fetched into memory, every value is rendered as a
// warehouse literal, and a single bulk INSERT is issued against the shared
// session. The reported row count is the number fetched from the source,
// not the warehouse's applied-row count.
//
// This path is not atomic: a failure during the warehouse execution step
// can leave the target table partially populated with no compensating
// rollback. Callers must treat a failure response as "replication state
// unknown" and re-run idempotently or verify manually.
func (b *Bridge) copyToWarehouse(ctx context.Context, cmd envelope.Command) (any, error) {
	sourceTable, err := cmd.StringArg(0)
	if err != nil {
		return nil, err
	}
	targetTable, err := cmd.StringArg(1)
	if err != nil {
		return nil, err
	}

	if b.session == nil {
		return nil, ErrSessionNotInitialized
	}

	jobID := uuid.New().String()
	b.logger.Info("copying table to warehouse",
		slog.String("job_id", jobID),
		slog.String("source", sourceTable),
		slog.String("target", targetTable))

	conn, err := b.openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", sourceTable))
	if err != nil {
		return nil, fmt.Errorf("failed to read source table %s: %w", sourceTable, err)
	}
	defer func() { _ = rows.Close() }()

	columns, data, err := scanAll(rows)
	if err != nil {
		return nil, err
	}

	// An empty source table leaves nothing to insert; the bulk statement
	// would be syntactically invalid with zero tuples.
	if len(data) > 0 {
		insertSQL, err := buildBulkInsert(targetTable, columns, data)
		if err != nil {
			return nil, err
		}

		if err := b.session.Exec(ctx, insertSQL); err != nil {
			return nil, fmt.Errorf("failed to insert data into target table: %w", err)
		}
	}

	b.logger.Info("copy finished",
		slog.String("job_id", jobID),
		slog.Int("rows", len(data)))

	return fmt.Sprintf("Successfully copied %d rows from %s to %s", len(data), sourceTable, targetTable), nil
}

// buildBulkInsert assembles one INSERT naming the fetched columns and
// inlining every row as a tuple literal.
func buildBulkInsert(table string, columns []string, data [][]any) (string, error) {
	tuples := make([]string, len(data))
	for i, row := range data {
		tuple, err := literal.RenderRow(row)
		if err != nil {
			return "", err
		}
		tuples[i] = tuple
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(tuples, ", ")), nil
}
