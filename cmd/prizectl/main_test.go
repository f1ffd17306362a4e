package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/pickleball-fantasy/internal/app"
	"github.com/riskibarqy/pickleball-fantasy/internal/config"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/pickleball-fantasy/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

func memoryOpener(t *testing.T) (servicesOpener, *app.Storage) {
	t.Helper()

	cfg := config.Config{
		StorageDriver:        config.StorageMemory,
		ProcessingFeePercent: decimal.RequireFromString("2.36"),
		PayoutPercent:        decimal.RequireFromString("77.64"),
		RecomputeMaxWorkers:  2,
	}
	storage, err := app.OpenStorage(t.Context(), cfg, logging.NewNop())
	require.NoError(t, err)
	services, err := app.NewServices(cfg, storage, nil, logging.NewNop())
	require.NoError(t, err)

	return func(context.Context) (*app.Services, func() error, error) {
		return services, func() error { return nil }, nil
	}, storage
}

func execute(t *testing.T, open servicesOpener, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd(open)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(t.Context())
	return out.String(), err
}

func TestResolveRulesPrintsTournamentFallback(t *testing.T) {
	open, _ := memoryOpener(t)

	out, err := execute(t, open, "resolve-rules", memory.ContestIDJakartaMain)

	require.NoError(t, err)
	assert.Contains(t, out, `"Source": "tournament"`)
	assert.Contains(t, out, `"PaidPositions": 2`)
}

func TestDistributeRejectsRunningTournament(t *testing.T) {
	open, _ := memoryOpener(t)

	_, err := execute(t, open, "distribute", memory.ContestIDJakartaMain)

	require.Error(t, err)
	assert.True(t, errors.Is(err, usecase.ErrInvalidState), "expected invalid state, got %v", err)
}

func TestDistributeAfterCompletion(t *testing.T) {
	open, storage := memoryOpener(t)
	tour, ok, err := storage.Tournaments.GetByID(t.Context(), memory.TournamentIDJakartaOpen)
	require.NoError(t, err)
	require.True(t, ok)
	tour.Status = tournament.StatusCompleted
	require.NoError(t, storage.Tournaments.Upsert(t.Context(), tour))

	out, err := execute(t, open, "distribute", memory.ContestIDJakartaMain)
	require.NoError(t, err)
	assert.Contains(t, out, `"Success": true`)

	out, err = execute(t, open, "disbursements", memory.ContestIDJakartaMain)
	require.NoError(t, err)
	assert.Contains(t, out, `"Status": "PENDING"`)
}

func TestCommandsRequireOneArgument(t *testing.T) {
	open, _ := memoryOpener(t)

	_, err := execute(t, open, "recompute-rankings")

	require.Error(t, err)
}
