// Package api exposes trains, parcels and the optimizer over HTTP.
package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/guimove/trainfit/internal/config"
	"github.com/guimove/trainfit/internal/events"
	"github.com/guimove/trainfit/internal/metrics"
	"github.com/guimove/trainfit/internal/orchestrator"
	"github.com/guimove/trainfit/internal/store"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Store   store.Store
	Orch    *orchestrator.Orchestrator
	Broker  events.Broker
	Metrics *metrics.Recorder
	Log     zerolog.Logger
	Env     string

	limiter *rate.Limiter // nil = unlimited
}

// New creates a Server around an orchestrator. The store and broker are
// the orchestrator's own.
func New(orch *orchestrator.Orchestrator, rec *metrics.Recorder, log zerolog.Logger, env string, cfg config.ServerConfig) *Server {
	s := &Server{
		Store:   orch.Store,
		Orch:    orch,
		Broker:  orch.Broker,
		Metrics: rec,
		Log:     log,
		Env:     env,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health
	mux.HandleFunc("GET /ping", s.PingHandler)
	mux.HandleFunc("GET /healthz", s.HealthHandler)
	mux.HandleFunc("GET /readyz", s.ReadyHandler)

	// Train lines
	mux.HandleFunc("GET /trainlines", s.ListTrainlinesHandler)
	mux.HandleFunc("POST /trainlines", s.CreateTrainlineHandler)

	// Trains
	mux.HandleFunc("GET /trains", s.ListTrainsHandler)
	mux.HandleFunc("POST /trains", s.CreateTrainHandler)
	mux.HandleFunc("GET /trains/{id}", s.GetTrainHandler)
	mux.HandleFunc("POST /trains/book", s.BookTrainsHandler)

	// Parcels
	mux.HandleFunc("GET /parcels", s.ListParcelsHandler)
	mux.HandleFunc("POST /parcels", s.CreateParcelHandler)
	mux.HandleFunc("POST /parcels/fill", s.FillParcelsHandler)

	// Stateless optimization
	mux.HandleFunc("POST /v1/optimize", s.OptimizeHandler)

	mux.HandleFunc("GET /events/ws", s.EventsWSHandler)

	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	return s.withRequestID(s.instrument(s.rateLimit(mux)))
}
