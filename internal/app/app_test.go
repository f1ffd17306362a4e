package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/pickleball-fantasy/internal/config"
	"github.com/riskibarqy/pickleball-fantasy/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		HTTPAddr:             "127.0.0.1:0",
		ReadTimeout:          time.Second,
		WriteTimeout:         time.Second,
		StorageDriver:        config.StorageMemory,
		CORSAllowedOrigins:   []string{"*"},
		AdminToken:           "token",
		ProcessingFeePercent: decimal.RequireFromString("2.36"),
		PayoutPercent:        decimal.RequireFromString("77.64"),
		RecomputeMaxWorkers:  2,
		MetricsEnabled:       true,
	}
}

func TestOpenStorage_MemoryIsSeeded(t *testing.T) {
	storage, err := OpenStorage(t.Context(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	defer func() { require.NoError(t, storage.Close()) }()

	assert.Equal(t, config.StorageMemory, storage.Driver)
	_, ok, err := storage.Contests.GetByID(t.Context(), memory.ContestIDJakartaMain)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.StorageDriver = "sqlite"

	_, err := OpenStorage(t.Context(), cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNewServices_PayoutClientNeedsBaseURL(t *testing.T) {
	cfg := memoryConfig()
	cfg.PayoutEnabled = true
	cfg.PayoutBaseURL = "not a url"

	storage, err := OpenStorage(t.Context(), cfg, logging.NewNop())
	require.NoError(t, err)

	_, err = NewServices(cfg, storage, nil, logging.NewNop())
	require.Error(t, err)
}

func TestNew_ServesRoutesAndMetrics(t *testing.T) {
	a, err := New(t.Context(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/contests/"+memory.ContestIDJakartaMain+"/prize-rules", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""

	_, err := New(t.Context(), cfg, logging.NewNop())
	require.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	a, err := New(t.Context(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, time.Second) }()

	select {
	case <-a.Bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("event router did not start")
	}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
