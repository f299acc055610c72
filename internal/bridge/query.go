package bridge

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapbridge/pkg/envelope"
)

// query runs arbitrary SQL against the source store and returns the full
// result set as a row sequence whose first row is the column-name header.
// Merging metadata and data into one homogeneous sequence is the protocol
// contract for this command kind; every other kind returns a plain marker
// or message.
func (b *Bridge) query(ctx context.Context, cmd envelope.Command) (any, error) {
	sqlText, err := cmd.StringArg(0)
	if err != nil {
		return nil, err
	}

	b.logger.Info("executing query", slog.String("sql", sqlText))

	conn, err := b.openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	rows, err := conn.DB.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, data, err := scanAll(rows)
	if err != nil {
		return nil, err
	}

	result := make([][]any, 0, len(data)+1)
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	result = append(result, header)
	result = append(result, data...)

	return result, nil
}

// execute runs a statement with no result set and returns the success
// marker.
func (b *Bridge) execute(ctx context.Context, cmd envelope.Command) (any, error) {
	sqlText, err := cmd.StringArg(0)
	if err != nil {
		return nil, err
	}

	b.logger.Info("executing statement", slog.String("sql", sqlText))

	conn, err := b.openSource(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.DB.ExecContext(ctx, sqlText); err != nil {
		return nil, fmt.Errorf("failed to execute statement: %w", err)
	}

	return SuccessMarker, nil
}

// scanAll reads every row into memory. Byte slices are normalized to
// strings so that text columns survive JSON encoding and literal rendering
// intact.
func scanAll(rows *sql.Rows) ([]string, [][]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read column metadata: %w", err)
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return columns, data, nil
}
