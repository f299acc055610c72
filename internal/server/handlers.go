package server

import (
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/leapbridge/internal/bridge"
	"github.com/leapstack-labs/leapbridge/pkg/envelope"
)

// Handlers provides the HTTP handlers for the bridge endpoints.
type Handlers struct {
	bridge *bridge.Bridge
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(b *bridge.Bridge, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{bridge: b, logger: logger}
}

// Command returns the handler for a command kind. A malformed envelope
// fails the whole request with 400; handler-level failures are reported
// inside the 200 response at the failing command's index, so callers must
// inspect each result slot.
func (h *Handlers) Command(kind bridge.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		env, err := envelope.Decode(r.Body)
		if err != nil {
			h.logger.Warn("rejecting request", slog.String("kind", string(kind)), slog.Any("error", err))
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := h.bridge.Dispatch(r.Context(), kind, env)

		w.Header().Set("Content-Type", "application/json")
		if err := envelope.Encode(w, resp); err != nil {
			h.logger.Error("failed to encode response", slog.Any("error", err))
		}
	}
}

// Ready reports the service as healthy regardless of backend state.
func (h *Handlers) Ready(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{}\n"))
}
