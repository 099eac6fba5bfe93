package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up the router with all endpoints.
func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// RealIP trusts X-Forwarded-For and X-Real-IP, so only a proxy we run may set them.
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(s.limiter.middleware)

	r.Get("/health", s.healthHandler)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.mountDocs(r)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/token", s.tokenHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/add_passenger", s.addPassengerHandler)
			r.Get("/passenger/{passenger_id}", s.getPassengerHandler)
			r.Get("/passenger/search/{name}", s.searchPassengersHandler)
			r.Get("/passengers", s.listPassengersHandler)
			r.Delete("/delete_passenger/{passenger_id}", s.deletePassengerHandler)

			r.Post("/add_flight", s.addFlightHandler)
			r.Get("/flight/{flight_id}", s.getFlightHandler)
			r.Get("/flights", s.listFlightsHandler)
			r.Delete("/delete_flight/{flight_id}", s.deleteFlightHandler)

			r.Post("/add_passenger_flight", s.addPassengerFlightHandler)
			r.Get("/calculate/{passenger_id}", s.calculateHandler)
		})
	})

	return r
}

// healthHandler reports store health; 503 when the store is down.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := s.db.Health(r.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, stats)
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// internalError logs err and answers 500 without leaking detail.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.logger.Error(msg, "error", err, "request_id", middleware.GetReqID(r.Context()))
	s.writeError(w, http.StatusInternalServerError, "Internal Server Error")
}
