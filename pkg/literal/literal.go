// Package literal renders scanned source-store values as SQL literals in
// the warehouse dialect. The replication path builds one bulk INSERT with
// every value inlined, so each supported variant needs a deterministic
// textual rendering.
package literal

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampFormat is the canonical rendering for datetime values.
const TimestampFormat = "2006-01-02 15:04:05"

// SerializationError is returned when a value has no defined literal
// rendering rule.
type SerializationError struct {
	Value any
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("no literal rendering rule for value of type %T", e.Value)
}

// Render converts a single value to its warehouse SQL literal.
//
// Text is single-quoted with embedded quotes doubled. Datetimes are quoted
// in the canonical timestamp format. Numbers and booleans render as their
// plain textual form, and nil renders as NULL.
func Render(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quote(val), nil
	case []byte:
		return quote(string(val)), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case time.Time:
		return quote(val.Format(TimestampFormat)), nil
	default:
		return "", &SerializationError{Value: v}
	}
}

// RenderRow converts a scanned row to a parenthesized tuple literal,
// e.g. (1, 'alice', NULL).
func RenderRow(row []any) (string, error) {
	parts := make([]string, len(row))
	for i, v := range row {
		lit, err := Render(v)
		if err != nil {
			return "", err
		}
		parts[i] = lit
	}
	return "(" + strings.Join(parts, ", ") + ")", nil
}

// quote single-quotes a string, doubling embedded quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
