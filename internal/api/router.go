package api

import (
	"log/slog"
	"net/http"
	"ocean-query-service/internal/api/handlers"
	"ocean-query-service/internal/places"
	"ocean-query-service/internal/platform/obs"
	"ocean-query-service/internal/services"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Service  *services.QueryService
	Registry *places.Registry
	Store    handlers.Pinger
	Timeout  time.Duration
	Logger   *slog.Logger

	// Served on /metrics. Nil uses the default Prometheus registry.
	Metrics http.Handler
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = obs.Discard()
	}
	metrics := d.Metrics
	if metrics == nil {
		metrics = promhttp.Handler()
	}

	mux := http.NewServeMux()

	queryHandler := &handlers.QueryHandler{Service: d.Service, Timeout: d.Timeout, Logger: logger}
	placeHandler := &handlers.PlaceHandler{Registry: d.Registry}
	readyHandler := &handlers.ReadyHandler{Store: d.Store}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/readyz", readyHandler.Ready)
	mux.HandleFunc("/places", placeHandler.List)
	mux.HandleFunc("/query", queryHandler.Query)
	mux.HandleFunc("/query/batch", queryHandler.Batch)
	mux.Handle("/metrics", metrics)

	return requestIDMiddleware(loggingMiddleware(logger, mux))
}
