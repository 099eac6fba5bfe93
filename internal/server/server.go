package server

import (
	"context"
	"net/http"
	"time"

	"flight-tracker/internal/auth"
	"flight-tracker/internal/config"
	"flight-tracker/internal/database"
	"flight-tracker/internal/logger"
	"flight-tracker/internal/metrics"
	"flight-tracker/internal/tracker"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Authenticator issues tokens for the admin credential and verifies them on
// protected routes.
type Authenticator interface {
	auth.Verifier
	Issue(ctx context.Context, username, password string) (string, error)
}

// Server holds the dependencies shared by all HTTP handlers.
type Server struct {
	db       database.Service
	tracker  *tracker.Service
	auth     Authenticator
	logger   logger.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	limiter  *visitorLimiter

	trustProxy bool
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	DB       database.Service
	Auth     Authenticator
	Logger   logger.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// New wires a Server. cfg supplies the rate limit and proxy trust.
func New(cfg *config.Config, d Deps) *Server {
	return &Server{
		db:       d.DB,
		tracker:  tracker.NewService(d.DB, d.Logger, d.Metrics),
		auth:     d.Auth,
		logger:   d.Logger,
		metrics:  d.Metrics,
		gatherer: d.Gatherer,
		limiter:  newVisitorLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst),

		trustProxy: cfg.TrustProxy,
	}
}

// NewServer returns an http.Server serving the full route table.
func NewServer(cfg *config.Config, d Deps) *http.Server {
	s := New(cfg, d)
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.RegisterRoutes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  time.Minute,
	}
}
