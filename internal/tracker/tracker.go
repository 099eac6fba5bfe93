// Package tracker resolves a passenger's itinerary into legs and orders them
// into a single flight path.
package tracker

import (
	"context"
	"errors"
	"fmt"

	"flight-tracker/internal/database"
	"flight-tracker/internal/flightpath"
	"flight-tracker/internal/logger"
	"flight-tracker/internal/metrics"
	"flight-tracker/internal/models"
)

// ErrNoFlights is returned for a passenger whose itinerary is empty.
var ErrNoFlights = errors.New("passenger has no flights")

// Calculation is the result of ordering a passenger's legs.
type Calculation struct {
	// FullPath lists every gathered leg with its flight, in itinerary order.
	FullPath []models.FlightLeg `json:"full_path"`
	// SortedPath is the reconstructed start-to-end chain.
	SortedPath []models.Leg `json:"sorted_path"`
	// OptimizedPath holds one leg from the path's start to its end.
	OptimizedPath []models.Leg `json:"optimized_path"`
}

type Service struct {
	db      database.Service
	logger  logger.Logger
	metrics *metrics.Metrics
}

func NewService(db database.Service, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{db: db, logger: log, metrics: m}
}

// GatherLegs flattens the legs of every flight on the passenger's itinerary.
func (s *Service) GatherLegs(ctx context.Context, passengerID string) ([]models.FlightLeg, error) {
	flightIDs, err := s.db.GetPassengerFlights(ctx, passengerID)
	if err != nil {
		return nil, err
	}
	if len(flightIDs) == 0 {
		return nil, fmt.Errorf("passenger %s: %w", passengerID, ErrNoFlights)
	}

	var legs []models.FlightLeg
	for _, flightID := range flightIDs {
		flight, err := s.db.GetFlight(ctx, flightID)
		if err != nil {
			return nil, fmt.Errorf("resolve itinerary of %s: %w", passengerID, err)
		}
		for _, leg := range flight.FullPath {
			legs = append(legs, models.FlightLeg{Leg: leg, FlightID: flightID})
		}
	}
	return legs, nil
}

// Calculate orders the passenger's legs and summarizes the result. It returns
// flightpath.ErrNoPath when the legs have no starting point.
func (s *Service) Calculate(ctx context.Context, passengerID string) (*Calculation, error) {
	tagged, err := s.GatherLegs(ctx, passengerID)
	if err != nil {
		s.observe(err, 0)
		return nil, err
	}

	legs := make([]models.Leg, len(tagged))
	for i, fl := range tagged {
		legs[i] = fl.Leg
	}

	sorted := flightpath.Reconstruct(legs)
	summary, err := flightpath.Summarize(sorted)
	if err != nil {
		s.logger.Warn("no path reconstructed", "passenger_id", passengerID, "legs", len(legs))
		s.observe(err, 0)
		return nil, fmt.Errorf("passenger %s: %w", passengerID, err)
	}
	if len(sorted) < len(legs) {
		s.logger.Warn("legs dropped during reconstruction",
			"passenger_id", passengerID,
			"gathered", len(legs),
			"kept", len(sorted),
		)
	}

	s.observe(nil, len(sorted))
	s.logger.Debug("path calculated", "passenger_id", passengerID, "start", summary.Origin, "end", summary.Destination)

	return &Calculation{
		FullPath:      tagged,
		SortedPath:    sorted,
		OptimizedPath: []models.Leg{summary},
	}, nil
}

func (s *Service) observe(err error, legs int) {
	if s.metrics == nil {
		return
	}
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, database.ErrNotFound), errors.Is(err, ErrNoFlights):
		outcome = metrics.OutcomeNotFound
	case errors.Is(err, flightpath.ErrNoPath):
		outcome = metrics.OutcomeNoPath
	default:
		outcome = metrics.OutcomeError
	}
	s.metrics.ObserveCalculation(outcome, legs)
}
