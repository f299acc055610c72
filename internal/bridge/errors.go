package bridge

import "errors"

// ErrSessionNotInitialized is returned when a replication command runs
// before the warehouse session has been created at startup.
var ErrSessionNotInitialized = errors.New("warehouse session not initialized")

// ErrUnknownCommand is returned when a command kind has no handler.
var ErrUnknownCommand = errors.New("unknown command")
