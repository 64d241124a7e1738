package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := map[string]string{"status": "ok"}
	writeJSON(w, r, http.StatusOK, res)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyHandler reports whether the record store is reachable.
type ReadyHandler struct {
	Store Pinger
}

func (h *ReadyHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.Store.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "readiness check failed", "error", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
