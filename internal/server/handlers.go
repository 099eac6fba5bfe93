package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"flight-tracker/internal/auth"
	"flight-tracker/internal/database"
	"flight-tracker/internal/flightpath"
	"flight-tracker/internal/models"
	"flight-tracker/internal/tracker"

	"github.com/go-chi/chi/v5"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	token, err := s.auth.Issue(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.Warn("token request rejected", "username", req.Username)
			s.writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		s.internalError(w, r, "issue token", err)
		return
	}
	s.writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

type addPassengerRequest struct {
	Name string `json:"name"`
}

func (s *Server) addPassengerHandler(w http.ResponseWriter, r *http.Request) {
	var req addPassengerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	passenger := models.Passenger{Name: req.Name}
	if err := s.db.CreatePassenger(r.Context(), &passenger); err != nil {
		if errors.Is(err, database.ErrConflict) {
			s.writeError(w, http.StatusBadRequest, "Passenger with this name already exists")
			return
		}
		s.internalError(w, r, "create passenger", err)
		return
	}

	if s.metrics != nil {
		s.metrics.IncPassengersCreated()
	}
	s.logger.Info("passenger created", "passenger_id", passenger.ID, "caller", callerID(r))
	s.writeJSON(w, http.StatusOK, passenger)
}

func (s *Server) getPassengerHandler(w http.ResponseWriter, r *http.Request) {
	passenger, err := s.db.GetPassenger(r.Context(), chi.URLParam(r, "passenger_id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Passenger not found")
			return
		}
		s.internalError(w, r, "get passenger", err)
		return
	}
	s.writeJSON(w, http.StatusOK, passenger)
}

func (s *Server) searchPassengersHandler(w http.ResponseWriter, r *http.Request) {
	passengers, err := s.db.FindPassengersByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.internalError(w, r, "search passengers", err)
		return
	}
	if len(passengers) == 0 {
		s.writeError(w, http.StatusNotFound, "No passengers found")
		return
	}
	s.writeJSON(w, http.StatusOK, passengers)
}

func (s *Server) listPassengersHandler(w http.ResponseWriter, r *http.Request) {
	passengers, err := s.db.ListPassengers(r.Context())
	if err != nil {
		s.internalError(w, r, "list passengers", err)
		return
	}
	s.writeJSON(w, http.StatusOK, passengers)
}

func (s *Server) deletePassengerHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "passenger_id")
	err := s.db.DeletePassenger(r.Context(), id)
	switch {
	case err == nil:
		s.logger.Info("passenger deleted", "passenger_id", id, "caller", callerID(r))
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "Passenger deleted successfully"})
	case errors.Is(err, database.ErrInUse):
		s.writeError(w, http.StatusBadRequest, "Cannot delete passenger with active flights")
	case errors.Is(err, database.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Passenger not found")
	default:
		s.internalError(w, r, "delete passenger", err)
	}
}

type addFlightRequest struct {
	FullPath []models.Leg `json:"full_path"`
}

func (s *Server) addFlightHandler(w http.ResponseWriter, r *http.Request) {
	var req addFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.FullPath) == 0 {
		s.writeError(w, http.StatusBadRequest, "Full path must be an array of [src, dest] pairs")
		return
	}

	flight := models.Flight{FullPath: req.FullPath}
	if err := s.db.CreateFlight(r.Context(), &flight); err != nil {
		if errors.Is(err, database.ErrConflict) {
			s.writeError(w, http.StatusBadRequest, "Flight with this path already exists")
			return
		}
		s.internalError(w, r, "create flight", err)
		return
	}

	if s.metrics != nil {
		s.metrics.IncFlightsCreated()
	}
	s.logger.Info("flight created", "flight_id", flight.ID, "legs", len(flight.FullPath), "caller", callerID(r))
	s.writeJSON(w, http.StatusOK, flight)
}

func (s *Server) getFlightHandler(w http.ResponseWriter, r *http.Request) {
	flight, err := s.db.GetFlight(r.Context(), chi.URLParam(r, "flight_id"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "Flight not found")
			return
		}
		s.internalError(w, r, "get flight", err)
		return
	}
	s.writeJSON(w, http.StatusOK, flight)
}

func (s *Server) listFlightsHandler(w http.ResponseWriter, r *http.Request) {
	flights, err := s.db.ListFlights(r.Context())
	if err != nil {
		s.internalError(w, r, "list flights", err)
		return
	}
	s.writeJSON(w, http.StatusOK, flights)
}

func (s *Server) deleteFlightHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "flight_id")
	err := s.db.DeleteFlight(r.Context(), id)
	switch {
	case err == nil:
		s.logger.Info("flight deleted", "flight_id", id, "caller", callerID(r))
		s.writeJSON(w, http.StatusOK, messageResponse{Message: "Flight deleted successfully"})
	case errors.Is(err, database.ErrInUse):
		s.writeError(w, http.StatusBadRequest, "Cannot delete flight with active passengers")
	case errors.Is(err, database.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Flight not found")
	default:
		s.internalError(w, r, "delete flight", err)
	}
}

type addPassengerFlightRequest struct {
	PassengerID string `json:"passenger_id"`
	FlightID    string `json:"flight_id"`
}

func (s *Server) addPassengerFlightHandler(w http.ResponseWriter, r *http.Request) {
	var req addPassengerFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.PassengerID == "" || req.FlightID == "" {
		s.writeError(w, http.StatusBadRequest, "Invalid passenger or flight ID")
		return
	}

	if err := s.db.AddPassengerFlight(r.Context(), req.PassengerID, req.FlightID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.writeError(w, http.StatusBadRequest, "Invalid passenger or flight ID")
			return
		}
		s.internalError(w, r, "add passenger flight", err)
		return
	}

	s.logger.Info("flight added to itinerary",
		"passenger_id", req.PassengerID,
		"flight_id", req.FlightID,
		"caller", callerID(r),
	)
	s.writeJSON(w, http.StatusOK, messageResponse{Message: "Flight added to passenger successfully"})
}

func (s *Server) calculateHandler(w http.ResponseWriter, r *http.Request) {
	calc, err := s.tracker.Calculate(r.Context(), chi.URLParam(r, "passenger_id"))
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, calc)
	case errors.Is(err, database.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Passenger not found")
	case errors.Is(err, tracker.ErrNoFlights):
		s.writeError(w, http.StatusNotFound, "Passenger has no flights")
	case errors.Is(err, flightpath.ErrNoPath):
		s.writeError(w, http.StatusUnprocessableEntity, "No path could be reconstructed")
	default:
		s.internalError(w, r, "calculate path", err)
	}
}
