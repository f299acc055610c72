// Package sqlite provides a SQLite source connector for the bridge.
//
// This file registers the connector with the source registry. Import this
// package with a blank identifier to register it:
//
//	import _ "github.com/leapstack-labs/leapbridge/pkg/sources/sqlite"
package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/leapbridge/pkg/source"
)

func init() {
	source.Register("sqlite", func(logger *slog.Logger) source.Connector { return New(logger) })
}
