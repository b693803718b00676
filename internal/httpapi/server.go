// Package httpapi exposes the journey-planning engine over HTTP (C11): a
// single POST /journeys endpoint plus a health check and a
// /debug/provider endpoint that answers only when Server.Debug is set,
// wrapped in request id and request logging middleware.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"raptorplanner.dev/internal/metrics"
	"raptorplanner.dev/internal/raptor"
)

// Server bundles what every handler needs: the timetable to search, the
// tuning a request may override, and where to send logs and metrics.
type Server struct {
	Provider raptor.Provider
	Tuning   raptor.Tuning
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// Debug enables the /debug/provider endpoint.
	Debug bool
}

// NewServer constructs a Server, defaulting Logger to slog.Default() and
// Tuning to raptor.DefaultTuning() when left zero.
func NewServer(provider raptor.Provider) *Server {
	return &Server{
		Provider: provider,
		Tuning:   raptor.DefaultTuning(),
		Logger:   slog.Default(),
	}
}

// Router builds the mux.Router serving this Server's endpoints.
func (s *Server) Router() *mux.Router {
	if s.Logger == nil {
		s.Logger = slog.Default()
	}

	router := mux.NewRouter()
	router.Use(RequestIDMiddleware)
	router.Use(NewRequestLoggingMiddleware(s.Logger))

	router.HandleFunc("/journeys", s.journeysHandler).Methods(http.MethodPost)
	router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/debug/provider", s.debugHandler).Methods(http.MethodGet)
	return router
}
