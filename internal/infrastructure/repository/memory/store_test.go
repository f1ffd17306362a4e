package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/match"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payment"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_WithinTransactionRollsBackOnError(t *testing.T) {
	s := NewStore()
	SeedDemo(s)
	ctx := t.Context()
	boom := errors.New("boom")

	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		claimed, err := s.Contests().ClaimPrizeDistribution(ctx, ContestIDJakartaMain)
		require.NoError(t, err)
		require.True(t, claimed)
		return boom
	})
	require.ErrorIs(t, err, boom)

	c, ok, err := s.Contests().GetByID(ctx, ContestIDJakartaMain)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, c.IsPrizesProcessing)
}

func TestStore_WithinTransactionIsReentrant(t *testing.T) {
	s := NewStore()
	calls := 0

	err := s.WithinTransaction(t.Context(), func(ctx context.Context) error {
		return s.WithinTransaction(ctx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestStore_RollbackKeepsWritesMadeOutsideTransaction(t *testing.T) {
	s := NewStore()
	ctx := t.Context()
	repo := s.Disbursements()
	require.NoError(t, repo.InsertMany(ctx, []prize.Disbursement{{
		ID: "d1", ContestID: "c1", TeamID: "t1", Rank: 1, Status: prize.DisbursementPending,
	}}))

	boom := errors.New("boom")
	started := make(chan struct{})
	release := make(chan struct{})
	txErr := make(chan error, 1)
	go func() {
		txErr <- s.WithinTransaction(ctx, func(context.Context) error {
			close(started)
			<-release
			return boom
		})
	}()
	<-started

	updated := make(chan error, 1)
	go func() {
		updated <- repo.UpdatePayout(ctx, prize.Disbursement{
			ID: "d1", Status: prize.DisbursementProcessing, TransactionRef: "trx",
		})
	}()

	select {
	case <-updated:
		t.Fatal("write outside the transaction finished while it was still open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.ErrorIs(t, <-txErr, boom)
	require.NoError(t, <-updated)

	got, ok, err := repo.GetByID(ctx, "d1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, prize.DisbursementProcessing, got.Status)
	assert.Equal(t, "trx", got.TransactionRef)
}

func TestContestRepository_ClaimOnlyOnce(t *testing.T) {
	s := NewStore()
	SeedDemo(s)
	repo := s.Contests()
	ctx := t.Context()

	first, err := repo.ClaimPrizeDistribution(ctx, ContestIDJakartaMain)
	require.NoError(t, err)
	second, err := repo.ClaimPrizeDistribution(ctx, ContestIDJakartaMain)
	require.NoError(t, err)
	assert.True(t, first)
	assert.False(t, second)

	require.NoError(t, repo.CompletePrizeDistribution(ctx, ContestIDJakartaMain))
	c, _, _ := repo.GetByID(ctx, ContestIDJakartaMain)
	assert.True(t, c.IsPrizesDistributed)
	assert.False(t, c.IsPrizesProcessing)
	assert.Equal(t, contest.StatusCompleted, c.Status)

	_, err = repo.ClaimPrizeDistribution(ctx, "missing")
	assert.Error(t, err)
}

func TestPointsRepository_UpsertKeepsCreatedAtAndSumsPerTournament(t *testing.T) {
	s := NewStore()
	ctx := t.Context()
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	require.NoError(t, s.Matches().Upsert(ctx, match.Match{ID: "m-other", TournamentID: "tour-b"}))
	require.NoError(t, s.Points().UpsertMany(ctx, []points.PlayerMatchPoints{
		{PlayerID: "p1", MatchID: "m1", TournamentID: "tour-a", Points: 26, CreatedAt: first},
		{PlayerID: "p1", MatchID: "m2", TournamentID: "tour-a", Points: 12},
		{PlayerID: "p1", MatchID: "m-other", Points: 100},
	}))
	require.NoError(t, s.Points().UpsertMany(ctx, []points.PlayerMatchPoints{
		{PlayerID: "p1", MatchID: "m1", TournamentID: "tour-a", Points: 21, CreatedAt: later},
	}))

	rows, err := s.Points().ListByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, first, rows[0].CreatedAt)
	assert.InDelta(t, 21, rows[0].Points, 1e-9)

	sums, err := s.Points().SumByTournament(ctx, "tour-a", []string{"p1", "p2"})
	require.NoError(t, err)
	assert.InDelta(t, 33, sums["p1"], 1e-9)
	_, hasP2 := sums["p2"]
	assert.False(t, hasP2)
}

func TestTeamRepository_ListByContestOrdersByCreation(t *testing.T) {
	s := NewStore()
	SeedDemo(s)

	teams, err := s.Teams().ListByContest(t.Context(), ContestIDJakartaMain)
	require.NoError(t, err)
	require.Len(t, teams, 6)
	assert.Equal(t, "team-01", teams[0].ID)
	assert.Equal(t, "team-06", teams[5].ID)

	err = s.Teams().UpdateRanks(t.Context(), "other-contest", []contest.Standing{{TeamID: "team-01", Rank: 1}})
	assert.Error(t, err)
}

func TestPrizeRuleRepository_ScopesAreExact(t *testing.T) {
	s := NewStore()
	SeedDemo(s)
	ctx := t.Context()
	contestScope := prize.ContestScope(TournamentIDJakartaOpen, ContestIDJakartaMain)

	rules, err := s.PrizeRules().ListByScope(ctx, contestScope)
	require.NoError(t, err)
	assert.Empty(t, rules)

	require.NoError(t, s.PrizeRules().Replace(ctx, contestScope, []prize.StoredRule{
		{ID: "r1", Scope: contestScope, Rule: prize.Rule{Rank: 1, MinPlayers: 1}},
	}))
	rules, err = s.PrizeRules().ListByScope(ctx, contestScope)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	defaults, err := s.PrizeRules().ListByScope(ctx, prize.TournamentScope(TournamentIDJakartaOpen))
	require.NoError(t, err)
	assert.Len(t, defaults, 2)
}

func TestDisbursementRepository_RejectsSecondRowForTeam(t *testing.T) {
	s := NewStore()
	ctx := t.Context()

	require.NoError(t, s.Disbursements().InsertMany(ctx, []prize.Disbursement{{ID: "d1", ContestID: "c1", TeamID: "t1", Rank: 1}}))
	err := s.Disbursements().InsertMany(ctx, []prize.Disbursement{{ID: "d2", ContestID: "c1", TeamID: "t1", Rank: 1}})
	assert.Error(t, err)

	rows, err := s.Disbursements().ListByContest(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestPaymentRepository_DedupesByPaymentID(t *testing.T) {
	s := NewStore()
	ctx := t.Context()
	p := payment.CapturedPayment{PaymentID: "pay-1", ContestID: "c1"}

	inserted, err := s.Payments().Record(ctx, p)
	require.NoError(t, err)
	assert.True(t, inserted)
	inserted, err = s.Payments().Record(ctx, p)
	require.NoError(t, err)
	assert.False(t, inserted)

	count, err := s.Payments().CountByContest(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
