package database

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"

	"flight-tracker/internal/config"
	"flight-tracker/internal/models"
)

// memoryService keeps everything in process maps behind one lock. Write volume
// is low, so a single RWMutex is enough to keep itinerary appends from racing.
type memoryService struct {
	mu sync.RWMutex

	passengers     map[string]models.Passenger
	passengerOrder []string
	flights        map[string]models.Flight
	flightOrder    []string
	itineraries    map[string][]string
}

// NewMemory returns an in-process Service. Nothing survives a restart.
func NewMemory() Service {
	return &memoryService{
		passengers:  make(map[string]models.Passenger),
		flights:     make(map[string]models.Flight),
		itineraries: make(map[string][]string),
	}
}

func (s *memoryService) Health(_ context.Context) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]string{
		"store":      config.StoreMemory,
		"status":     "up",
		"message":    "It's healthy",
		"passengers": strconv.Itoa(len(s.passengers)),
		"flights":    strconv.Itoa(len(s.flights)),
	}
}

func (s *memoryService) Close() error {
	return nil
}

func (s *memoryService) CreatePassenger(_ context.Context, p *models.Passenger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.passengers {
		if existing.Name == p.Name {
			return fmt.Errorf("passenger %q: %w", p.Name, ErrConflict)
		}
	}
	if p.ID == "" {
		p.ID = s.unusedID(func(id string) bool { _, ok := s.passengers[id]; return ok })
	} else if _, ok := s.passengers[p.ID]; ok {
		return fmt.Errorf("passenger %s: %w", p.ID, ErrConflict)
	}

	s.passengers[p.ID] = *p
	s.passengerOrder = append(s.passengerOrder, p.ID)
	return nil
}

func (s *memoryService) GetPassenger(_ context.Context, id string) (models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.passengers[id]; ok {
		return p, nil
	}
	return models.Passenger{}, fmt.Errorf("passenger %s: %w", id, ErrNotFound)
}

func (s *memoryService) ListPassengers(_ context.Context) ([]models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Passenger, 0, len(s.passengerOrder))
	for _, id := range s.passengerOrder {
		out = append(out, s.passengers[id])
	}
	return out, nil
}

func (s *memoryService) FindPassengersByName(_ context.Context, name string) ([]models.Passenger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lowered := strings.ToLower(name)
	out := []models.Passenger{}
	for _, id := range s.passengerOrder {
		if p := s.passengers[id]; strings.ToLower(p.Name) == lowered {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memoryService) DeletePassenger(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.itineraries[id]) > 0 {
		return fmt.Errorf("passenger %s: %w", id, ErrInUse)
	}
	if _, ok := s.passengers[id]; !ok {
		return fmt.Errorf("passenger %s: %w", id, ErrNotFound)
	}
	delete(s.passengers, id)
	delete(s.itineraries, id)
	s.passengerOrder = slices.DeleteFunc(s.passengerOrder, func(v string) bool { return v == id })
	return nil
}

func (s *memoryService) CreateFlight(_ context.Context, f *models.Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.flights {
		if existing.SamePath(f.FullPath) {
			return fmt.Errorf("flight path matches %s: %w", existing.ID, ErrConflict)
		}
	}
	if f.ID == "" {
		f.ID = s.unusedID(func(id string) bool { _, ok := s.flights[id]; return ok })
	} else if _, ok := s.flights[f.ID]; ok {
		return fmt.Errorf("flight %s: %w", f.ID, ErrConflict)
	}

	stored := models.Flight{ID: f.ID, FullPath: slices.Clone(f.FullPath)}
	s.flights[f.ID] = stored
	s.flightOrder = append(s.flightOrder, f.ID)
	return nil
}

func (s *memoryService) GetFlight(_ context.Context, id string) (models.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flights[id]
	if !ok {
		return models.Flight{}, fmt.Errorf("flight %s: %w", id, ErrNotFound)
	}
	return models.Flight{ID: f.ID, FullPath: slices.Clone(f.FullPath)}, nil
}

func (s *memoryService) ListFlights(_ context.Context) ([]models.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Flight, 0, len(s.flightOrder))
	for _, id := range s.flightOrder {
		f := s.flights[id]
		out = append(out, models.Flight{ID: f.ID, FullPath: slices.Clone(f.FullPath)})
	}
	return out, nil
}

func (s *memoryService) DeleteFlight(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, flightIDs := range s.itineraries {
		if slices.Contains(flightIDs, id) {
			return fmt.Errorf("flight %s: %w", id, ErrInUse)
		}
	}
	if _, ok := s.flights[id]; !ok {
		return fmt.Errorf("flight %s: %w", id, ErrNotFound)
	}
	delete(s.flights, id)
	s.flightOrder = slices.DeleteFunc(s.flightOrder, func(v string) bool { return v == id })
	return nil
}

func (s *memoryService) AddPassengerFlight(_ context.Context, passengerID, flightID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.passengers[passengerID]; !ok {
		return fmt.Errorf("passenger %s: %w", passengerID, ErrNotFound)
	}
	if _, ok := s.flights[flightID]; !ok {
		return fmt.Errorf("flight %s: %w", flightID, ErrNotFound)
	}
	s.itineraries[passengerID] = append(s.itineraries[passengerID], flightID)
	return nil
}

func (s *memoryService) GetPassengerFlights(_ context.Context, passengerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.passengers[passengerID]; !ok {
		return nil, fmt.Errorf("passenger %s: %w", passengerID, ErrNotFound)
	}
	out := slices.Clone(s.itineraries[passengerID])
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// unusedID draws IDs until taken reports false. Caller holds the write lock.
func (s *memoryService) unusedID(taken func(string) bool) string {
	for {
		if id := models.NewID(); !taken(id) {
			return id
		}
	}
}
