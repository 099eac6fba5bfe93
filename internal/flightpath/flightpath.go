// Package flightpath orders an unordered set of legs into a single
// start-to-end chain.
package flightpath

import (
	"errors"

	"flight-tracker/internal/models"
)

// ErrNoPath is returned when a summary is requested for an empty path.
var ErrNoPath = errors.New("no path could be reconstructed")

// Reconstruct chains legs from the first origin that nobody flies into until
// a destination with no onward leg. A repeated origin keeps only its last leg.
// Legs not reachable from the chosen start are dropped, and input with no
// dangling start (empty or purely cyclic) yields an empty path.
func Reconstruct(legs []models.Leg) []models.Leg {
	next := make(map[string]string, len(legs))
	prev := make(map[string]string, len(legs))
	origins := make([]string, 0, len(legs))

	for _, leg := range legs {
		if _, seen := next[leg.Origin]; !seen {
			origins = append(origins, leg.Origin)
		}
		next[leg.Origin] = leg.Destination
		prev[leg.Destination] = leg.Origin
	}

	start, found := "", false
	for _, origin := range origins {
		if _, ok := prev[origin]; !ok {
			start, found = origin, true
			break
		}
	}
	if !found {
		return []models.Leg{}
	}

	// Each origin maps to one leg, so a walk longer than len(next) is looping.
	path := make([]models.Leg, 0, len(next))
	for current := start; len(path) < len(next); {
		dest, ok := next[current]
		if !ok {
			break
		}
		path = append(path, models.Leg{Origin: current, Destination: dest})
		current = dest
	}
	return path
}

// Summarize collapses a reconstructed path into a single leg from its first
// origin to its final destination.
func Summarize(path []models.Leg) (models.Leg, error) {
	if len(path) == 0 {
		return models.Leg{}, ErrNoPath
	}
	return models.Leg{
		Origin:      path[0].Origin,
		Destination: path[len(path)-1].Destination,
	}, nil
}
