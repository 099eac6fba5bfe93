package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"flight-tracker/internal/config"
	"flight-tracker/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig() *config.Config {
	return &config.Config{
		Port:           "8080",
		Store:          config.StoreMemory,
		LogLevel:       "info",
		SeedSampleData: true,
		AdminUsername:  "admin",
		AdminPassword:  "password",
		JWTSigningKey:  "k",
		TokenTTL:       time.Hour,
		RateLimitRPS:   1,
		RateLimitBurst: 1,
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := baseConfig()
	require.NoError(t, applyFlags(cfg, []string{"-p", "9000", "--seed=false", "--log-level", "debug"}))
	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.SeedSampleData)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.StoreMemory, cfg.Store)
}

func TestApplyFlags_RejectsUnknownStore(t *testing.T) {
	cfg := baseConfig()
	assert.Error(t, applyFlags(cfg, []string{"--store", "sqlite"}))
}

func TestApplyFlags_StoreIsCaseInsensitive(t *testing.T) {
	cfg := baseConfig()
	require.NoError(t, applyFlags(cfg, []string{"--store", "Postgres"}))
	assert.Equal(t, config.StorePostgres, cfg.Store)

	require.NoError(t, applyFlags(cfg, []string{"--store", "MEMORY"}))
	assert.Equal(t, config.StoreMemory, cfg.Store)
}

func TestServe_ReturnsServerError(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, listener.Close())

	srv := &http.Server{Handler: http.NotFoundHandler()}
	err = serve(srv, listener, make(chan os.Signal), logger.NewNop())
	assert.Error(t, err)
}

func TestServe_GracefulShutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGTERM

	srv := &http.Server{Handler: http.NotFoundHandler()}
	assert.NoError(t, serve(srv, listener, stop, logger.NewNop()))
}

func TestOpenStore_Memory(t *testing.T) {
	db, err := openStore(baseConfig(), logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "memory", db.Health(context.Background())["store"])
}
