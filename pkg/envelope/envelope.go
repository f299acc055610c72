// Package envelope implements the nested-array wire protocol used by the
// bridge service.
//
// A request body carries one or more indexed commands:
//
//	{"data": [[0, "SELECT 1"], [1, "SELECT 2"]]}
//
// The first element of each entry is a caller-assigned integer index; the
// remaining elements are the command's arguments. A response mirrors the
// shape, pairing each index with its result payload:
//
//	{"data": [[0, [["x"], [1]]], [1, "SUCCESS"]]}
//
// The codec is a pure transform: it validates the top-level shape and the
// index invariants, nothing else. Argument arity and types are checked by
// the command handlers.
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrMalformed is returned when a request body does not match the expected
// envelope shape. Decode failures fail the whole request, unlike handler
// errors which are reported per command index.
var ErrMalformed = errors.New("malformed envelope")

// Command is a single indexed command within an envelope.
type Command struct {
	Index int
	Args  []any
}

// Envelope is an ordered, non-empty sequence of commands.
type Envelope struct {
	Commands []Command
}

// Result pairs a command index with its result payload. The payload is
// either a row sequence, a success marker, or an error message string.
type Result struct {
	Index   int
	Payload any
}

// Response collects one result per command, in command order.
type Response struct {
	Results []Result
}

// Add appends a result for the given command index.
func (r *Response) Add(index int, payload any) {
	r.Results = append(r.Results, Result{Index: index, Payload: payload})
}

// Decode reads and validates a request envelope.
//
// It fails with ErrMalformed if the body is not valid JSON, the data field
// is missing or empty, an entry has no index, an index is not an integer,
// or two entries share an index.
func Decode(r io.Reader) (*Envelope, error) {
	var raw struct {
		Data []json.RawMessage `json:"data"`
	}

	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw.Data) == 0 {
		return nil, fmt.Errorf("%w: data must be a non-empty array", ErrMalformed)
	}

	env := &Envelope{Commands: make([]Command, 0, len(raw.Data))}
	seen := make(map[int]bool, len(raw.Data))

	for i, entry := range raw.Data {
		var fields []any
		if err := json.Unmarshal(entry, &fields); err != nil {
			return nil, fmt.Errorf("%w: command %d is not an array", ErrMalformed, i)
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: command %d is missing an index", ErrMalformed, i)
		}

		idx, ok := commandIndex(fields[0])
		if !ok {
			return nil, fmt.Errorf("%w: command %d has a non-integer index", ErrMalformed, i)
		}
		if seen[idx] {
			return nil, fmt.Errorf("%w: duplicate command index %d", ErrMalformed, idx)
		}
		seen[idx] = true

		env.Commands = append(env.Commands, Command{Index: idx, Args: fields[1:]})
	}

	return env, nil
}

// commandIndex extracts an integer index from a decoded JSON value.
// encoding/json decodes all numbers as float64.
func commandIndex(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// Encode writes the response envelope, preserving command order and the
// original command indices.
func Encode(w io.Writer, resp *Response) error {
	data := make([][]any, 0, len(resp.Results))
	for _, res := range resp.Results {
		data = append(data, []any{res.Index, res.Payload})
	}
	return json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// StringArg returns the i-th command argument as a string.
func (c Command) StringArg(i int) (string, error) {
	if i >= len(c.Args) {
		return "", fmt.Errorf("command %d: missing argument %d", c.Index, i)
	}
	s, ok := c.Args[i].(string)
	if !ok {
		return "", fmt.Errorf("command %d: argument %d is not a string", c.Index, i)
	}
	return s, nil
}

// TupleListArg returns the i-th command argument as a list of value tuples,
// the shape used by the insert command's parameter list.
func (c Command) TupleListArg(i int) ([][]any, error) {
	if i >= len(c.Args) {
		return nil, fmt.Errorf("command %d: missing argument %d", c.Index, i)
	}
	list, ok := c.Args[i].([]any)
	if !ok {
		return nil, fmt.Errorf("command %d: argument %d is not an array", c.Index, i)
	}
	tuples := make([][]any, 0, len(list))
	for j, entry := range list {
		tuple, ok := entry.([]any)
		if !ok {
			return nil, fmt.Errorf("command %d: value %d is not an array", c.Index, j)
		}
		tuples = append(tuples, tuple)
	}
	return tuples, nil
}
