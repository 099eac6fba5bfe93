package database

import (
	"context"
	"errors"
	"fmt"

	"flight-tracker/internal/models"
)

// SampleData is what Seed loads: one passenger, two flights, and the
// passenger booked on the first flight.
type SampleData struct {
	Passenger models.Passenger
	Flights   []models.Flight
}

// Seed loads sample data into an empty store. It does nothing when the sample
// passenger already exists, so restarting against PostgreSQL is safe.
func Seed(ctx context.Context, db Service) (*SampleData, error) {
	sample := &SampleData{
		Passenger: models.Passenger{Name: "John Doe"},
		Flights: []models.Flight{
			{FullPath: []models.Leg{{Origin: "SFO", Destination: "ATL"}, {Origin: "ATL", Destination: "EWR"}}},
			{FullPath: []models.Leg{{Origin: "LAX", Destination: "ORD"}, {Origin: "ORD", Destination: "JFK"}}},
		},
	}

	if err := db.CreatePassenger(ctx, &sample.Passenger); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, nil
		}
		return nil, fmt.Errorf("seed passenger: %w", err)
	}
	for i := range sample.Flights {
		if err := db.CreateFlight(ctx, &sample.Flights[i]); err != nil {
			return nil, fmt.Errorf("seed flight: %w", err)
		}
	}
	if err := db.AddPassengerFlight(ctx, sample.Passenger.ID, sample.Flights[0].ID); err != nil {
		return nil, fmt.Errorf("seed itinerary: %w", err)
	}
	return sample, nil
}
