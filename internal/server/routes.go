package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/leapbridge/internal/bridge"
)

// SetupRoutes configures all routes for the bridge server. Each POST
// endpoint corresponds to one command kind; the readiness endpoint answers
// without probing any backend.
func SetupRoutes(router chi.Router, b *bridge.Bridge, logger *slog.Logger) {
	h := NewHandlers(b, logger)

	router.Post("/query", h.Command(bridge.KindQuery))
	router.Post("/execute", h.Command(bridge.KindExec))
	router.Post("/insert", h.Command(bridge.KindInsert))
	router.Post("/copy_to_warehouse", h.Command(bridge.KindCopy))
	router.Get("/ready", h.Ready)
}
