package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"flight-tracker/internal/auth"
	"flight-tracker/internal/config"
	"flight-tracker/internal/database"
	"flight-tracker/internal/logger"
	"flight-tracker/internal/metrics"
	"flight-tracker/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run starts the service and blocks until it stops. The return value is the
// process exit code; deferred cleanup has already happened when it returns.
func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 1
	}
	if err := applyFlags(cfg, args); err != nil {
		fmt.Fprintf(os.Stderr, "flags: %v\n", err)
		return 2
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	db, err := openStore(cfg, log)
	if err != nil {
		log.Error("could not open store", "store", cfg.Store, "error", err)
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("closing store", "error", err)
		}
	}()

	if cfg.SeedSampleData {
		sample, err := database.Seed(context.Background(), db)
		if err != nil {
			log.Error("could not seed sample data", "error", err)
			return 1
		}
		if sample != nil {
			log.Info("sample data loaded",
				"passenger_id", sample.Passenger.ID,
				"flight_id", sample.Flights[0].ID,
			)
		}
	}

	authSvc, err := auth.NewService(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTSigningKey, cfg.TokenTTL)
	if err != nil {
		log.Error("could not initialise auth", "error", err)
		return 1
	}

	srv := server.NewServer(cfg, server.Deps{
		DB:       db,
		Auth:     authSvc,
		Logger:   log,
		Metrics:  metrics.New(prometheus.DefaultRegisterer),
		Gatherer: prometheus.DefaultGatherer,
	})

	// Create a listener on the desired address
	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		log.Error("error creating listener", "addr", srv.Addr, "error", err)
		return 1
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	log.Info("server started", "addr", srv.Addr, "store", cfg.Store)
	if err := serve(srv, listener, stop, log); err != nil {
		return 1
	}
	return 0
}

// serve runs srv on listener until it fails or a signal arrives on stop, in
// which case it shuts down gracefully. A nil return means a clean stop.
func serve(srv *http.Server, listener net.Listener, stop <-chan os.Signal, log logger.Logger) error {
	// Channel to receive errors from the server
	errChan := make(chan error, 1)

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for an interrupt or server error
	select {
	case err := <-errChan:
		log.Error("server error", "error", err)
		return err
	case sig := <-stop:
		log.Info("initiating graceful shutdown", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("could not gracefully shut down the server", "error", err)
			return err
		}
		log.Info("server gracefully stopped")
		return nil
	}
}

// applyFlags lets command line flags override values loaded from the environment.
func applyFlags(cfg *config.Config, args []string) error {
	fs := pflag.NewFlagSet("flight-tracker", pflag.ContinueOnError)
	port := fs.StringP("port", "p", cfg.Port, "HTTP listen port")
	store := fs.String("store", cfg.Store, "storage backend: memory or postgres")
	migrate := fs.Bool("migrate", cfg.AutoMigrate, "apply database migrations on startup (postgres only)")
	seed := fs.Bool("seed", cfg.SeedSampleData, "load sample passengers and flights on startup")
	logLevel := fs.String("log-level", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.Port = *port
	cfg.Store = strings.ToLower(*store)
	cfg.AutoMigrate = *migrate
	cfg.SeedSampleData = *seed
	cfg.LogLevel = *logLevel
	return cfg.Validate()
}

func openStore(cfg *config.Config, log logger.Logger) (database.Service, error) {
	if cfg.Store == config.StoreMemory {
		return database.NewMemory(), nil
	}

	if cfg.AutoMigrate {
		if err := database.Migrate(cfg.DB.DSN(), cfg.MigrationsDir); err != nil {
			return nil, err
		}
		log.Info("migrations applied", "dir", cfg.MigrationsDir)
	}

	db, err := database.New(cfg.DB)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if health := db.Health(ctx); health["status"] != "up" {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %s", health["error"])
	}
	return db, nil
}
