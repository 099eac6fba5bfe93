package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"flight-tracker/internal/config"
	"flight-tracker/internal/models"

	"github.com/jackc/pgx/v5/pgconn"

	// PostgreSQL driver
	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	ErrInUse    = errors.New("in use")
)

// Service stores passengers, flights and the itineraries linking them.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are backend-specific.
	Health(ctx context.Context) map[string]string

	// Close releases the backend's resources.
	Close() error

	// CreatePassenger assigns an ID when p.ID is empty. Names are unique
	// (case-sensitive); a duplicate returns ErrConflict.
	CreatePassenger(ctx context.Context, p *models.Passenger) error
	GetPassenger(ctx context.Context, id string) (models.Passenger, error)
	ListPassengers(ctx context.Context) ([]models.Passenger, error)
	// FindPassengersByName matches names case-insensitively.
	FindPassengersByName(ctx context.Context, name string) ([]models.Passenger, error)
	// DeletePassenger returns ErrInUse while the passenger has flights.
	DeletePassenger(ctx context.Context, id string) error

	// CreateFlight assigns an ID when f.ID is empty. A flight whose legs match
	// an existing flight exactly returns ErrConflict.
	CreateFlight(ctx context.Context, f *models.Flight) error
	GetFlight(ctx context.Context, id string) (models.Flight, error)
	ListFlights(ctx context.Context) ([]models.Flight, error)
	// DeleteFlight returns ErrInUse while any itinerary references the flight.
	DeleteFlight(ctx context.Context, id string) error

	// AddPassengerFlight appends flightID to the passenger's itinerary.
	AddPassengerFlight(ctx context.Context, passengerID, flightID string) error
	// GetPassengerFlights returns the itinerary in assignment order. An unknown
	// passenger returns ErrNotFound; a known one without flights returns an
	// empty slice.
	GetPassengerFlights(ctx context.Context, passengerID string) ([]string, error)
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type service struct {
	db       *sql.DB
	database string
}

// New opens a PostgreSQL-backed Service.
func New(cfg config.DBConfig) (Service, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &service{db: db, database: cfg.Database}, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 1*time.Second)
	defer cancel()

	stats := map[string]string{"store": config.StorePostgres}

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.OpenConnections > 20 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

func (s *service) Close() error {
	return s.db.Close()
}

func (s *service) CreatePassenger(ctx context.Context, p *models.Passenger) error {
	if p.ID == "" {
		p.ID = models.NewID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO passengers (id, name) VALUES ($1, $2)`,
		p.ID, p.Name,
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("passenger %q: %w", p.Name, ErrConflict)
		}
		return fmt.Errorf("insert passenger: %w", err)
	}
	return nil
}

func (s *service) GetPassenger(ctx context.Context, id string) (models.Passenger, error) {
	var p models.Passenger
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM passengers WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Passenger{}, fmt.Errorf("passenger %s: %w", id, ErrNotFound)
		}
		return models.Passenger{}, fmt.Errorf("select passenger: %w", err)
	}
	return p, nil
}

func (s *service) ListPassengers(ctx context.Context) ([]models.Passenger, error) {
	return s.queryPassengers(ctx, `SELECT id, name FROM passengers ORDER BY created_at, id`)
}

func (s *service) FindPassengersByName(ctx context.Context, name string) ([]models.Passenger, error) {
	return s.queryPassengers(ctx,
		`SELECT id, name FROM passengers WHERE lower(name) = lower($1) ORDER BY created_at, id`, name)
}

func (s *service) queryPassengers(ctx context.Context, query string, args ...any) ([]models.Passenger, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select passengers: %w", err)
	}
	defer rows.Close()

	passengers := []models.Passenger{}
	for rows.Next() {
		var p models.Passenger
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan passenger: %w", err)
		}
		passengers = append(passengers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passengers: %w", err)
	}
	return passengers, nil
}

func (s *service) DeletePassenger(ctx context.Context, id string) error {
	var active bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM passenger_flights WHERE passenger_id = $1)`, id,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("check passenger flights: %w", err)
	}
	if active {
		return fmt.Errorf("passenger %s: %w", id, ErrInUse)
	}

	return s.deleteByID(ctx, `DELETE FROM passengers WHERE id = $1`, "passenger", id)
}

func (s *service) CreateFlight(ctx context.Context, f *models.Flight) error {
	path, err := json.Marshal(f.FullPath)
	if err != nil {
		return fmt.Errorf("encode flight path: %w", err)
	}
	if f.ID == "" {
		f.ID = models.NewID()
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO flights (id, full_path) VALUES ($1, $2::jsonb)`,
		f.ID, string(path),
	)
	if err != nil {
		if hasPgCode(err, pgUniqueViolation) {
			return fmt.Errorf("flight path %s: %w", path, ErrConflict)
		}
		return fmt.Errorf("insert flight: %w", err)
	}
	return nil
}

func (s *service) GetFlight(ctx context.Context, id string) (models.Flight, error) {
	var (
		f    models.Flight
		path []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, full_path FROM flights WHERE id = $1`, id,
	).Scan(&f.ID, &path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Flight{}, fmt.Errorf("flight %s: %w", id, ErrNotFound)
		}
		return models.Flight{}, fmt.Errorf("select flight: %w", err)
	}
	if err := json.Unmarshal(path, &f.FullPath); err != nil {
		return models.Flight{}, fmt.Errorf("decode flight %s path: %w", id, err)
	}
	return f, nil
}

func (s *service) ListFlights(ctx context.Context) ([]models.Flight, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, full_path FROM flights ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select flights: %w", err)
	}
	defer rows.Close()

	flights := []models.Flight{}
	for rows.Next() {
		var (
			f    models.Flight
			path []byte
		)
		if err := rows.Scan(&f.ID, &path); err != nil {
			return nil, fmt.Errorf("scan flight: %w", err)
		}
		if err := json.Unmarshal(path, &f.FullPath); err != nil {
			return nil, fmt.Errorf("decode flight %s path: %w", f.ID, err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flights: %w", err)
	}
	return flights, nil
}

func (s *service) DeleteFlight(ctx context.Context, id string) error {
	var active bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM passenger_flights WHERE flight_id = $1)`, id,
	).Scan(&active)
	if err != nil {
		return fmt.Errorf("check flight passengers: %w", err)
	}
	if active {
		return fmt.Errorf("flight %s: %w", id, ErrInUse)
	}

	return s.deleteByID(ctx, `DELETE FROM flights WHERE id = $1`, "flight", id)
}

func (s *service) deleteByID(ctx context.Context, query, kind, id string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		// An itinerary row inserted after the EXISTS check trips the foreign key.
		if hasPgCode(err, pgForeignKeyViolation) {
			return fmt.Errorf("%s %s: %w", kind, id, ErrInUse)
		}
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

func (s *service) AddPassengerFlight(ctx context.Context, passengerID, flightID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO passenger_flights (passenger_id, flight_id) VALUES ($1, $2)`,
		passengerID, flightID,
	)
	if err != nil {
		if hasPgCode(err, pgForeignKeyViolation) {
			return fmt.Errorf("passenger %s or flight %s: %w", passengerID, flightID, ErrNotFound)
		}
		return fmt.Errorf("insert passenger flight: %w", err)
	}
	return nil
}

func (s *service) GetPassengerFlights(ctx context.Context, passengerID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT flight_id FROM passenger_flights WHERE passenger_id = $1 ORDER BY position`,
		passengerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select passenger flights: %w", err)
	}
	defer rows.Close()

	flightIDs := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan passenger flight: %w", err)
		}
		flightIDs = append(flightIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passenger flights: %w", err)
	}

	if len(flightIDs) == 0 {
		if _, err := s.GetPassenger(ctx, passengerID); err != nil {
			return nil, err
		}
	}
	return flightIDs, nil
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
