package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payout"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/pickleball-fantasy/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/id"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	testTournamentID = "tour-1"
	testContestID    = "contest-1"
)

var testFeePercent = decimal.RequireFromString("2.36")

type services struct {
	store        *memory.Store
	points       *MatchPointsService
	aggregator   *TeamAggregatorService
	ranking      *RankingService
	dispatcher   *RecomputeDispatcher
	rules        *PrizeRuleService
	distribution *PrizeDistributionService
	pool         *PrizePoolService
}

func newServices(t *testing.T, gateway payout.Gateway) services {
	t.Helper()

	store := memory.NewStore()
	logger := logging.NewNop()
	ids := &id.Sequence{Prefix: "id-"}

	aggregator := NewTeamAggregatorService(store.Contests(), store.Teams(), store.Points(), store)
	ranking := NewRankingService(store.Contests(), store.Teams(), store)
	dispatcher := NewRecomputeDispatcher(store.Contests(), store.Teams(), aggregator, ranking, 4, nil, logger)
	rules := NewPrizeRuleService(store.Contests(), store.Tournaments(), store.Teams(), store.PrizeRules(), store, ids, logger)

	return services{
		store:      store,
		points:     NewMatchPointsService(store.Matches(), store.Tournaments(), store.Points(), store, dispatcher, nil, logger),
		aggregator: aggregator,
		ranking:    ranking,
		dispatcher: dispatcher,
		rules:      rules,
		distribution: NewPrizeDistributionService(
			store.Contests(), store.Tournaments(), store.Teams(), store.Disbursements(),
			rules, store, gateway, ids, testFeePercent, nil, logger,
		),
		pool: NewPrizePoolService(store.Contests(), store.Payments(), rules, store, decimal.RequireFromString("77.64"), nil, logger),
	}
}

func seedTournament(t *testing.T, s services, status tournament.Status) {
	t.Helper()
	require.NoError(t, s.store.Tournaments().Upsert(t.Context(), tournament.Tournament{
		ID:     testTournamentID,
		Name:   "Test Open",
		Status: status,
	}))
}

func seedContest(t *testing.T, s services, pool decimal.Decimal) {
	t.Helper()
	require.NoError(t, s.store.Contests().Upsert(t.Context(), contest.Contest{
		ID:           testContestID,
		TournamentID: testTournamentID,
		Name:         "Main",
		EntryFee:     decimal.NewFromInt(100),
		PrizePool:    pool,
		Status:       contest.StatusInProgress,
	}))
}

// seedTeams creates n teams whose totals descend with their index.
func seedTeams(t *testing.T, s services, n int) []contest.Team {
	t.Helper()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	teams := make([]contest.Team, 0, n)
	for i := 0; i < n; i++ {
		team := contest.Team{
			ID:          "team-" + string(rune('a'+i)),
			ContestID:   testContestID,
			UserID:      "user-" + string(rune('a'+i)),
			TotalPoints: float64(100 - i*10),
			Roster:      []contest.RosterMember{{PlayerID: "p-" + string(rune('a'+i)), IsCaptain: true}},
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, s.store.Teams().Upsert(t.Context(), team))
		teams = append(teams, team)
	}
	return teams
}

func seedTournamentRules(t *testing.T, s services, rules ...prize.Rule) {
	t.Helper()
	_, err := s.rules.ReplaceTournamentRules(t.Context(), testTournamentID, rules)
	require.NoError(t, err)
}

func pct(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type stubGateway struct {
	accounts    map[string]payout.Account
	lookupErr   error
	transferErr map[string]error
	transfers   []payout.TransferRequest
}

func (g *stubGateway) LookupAccount(_ context.Context, userID string) (payout.Account, bool, error) {
	if g.lookupErr != nil {
		return payout.Account{}, false, g.lookupErr
	}
	acct, ok := g.accounts[userID]
	return acct, ok, nil
}

func (g *stubGateway) Transfer(_ context.Context, req payout.TransferRequest) (payout.TransferResult, error) {
	if err := g.transferErr[req.UserID]; err != nil {
		return payout.TransferResult{}, err
	}
	g.transfers = append(g.transfers, req)
	return payout.TransferResult{TransactionRef: "trx-" + req.DisbursementID}, nil
}

// assertErrorIs also follows cockroachdb error marks, which the standard
// library errors.Is does not see.
func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error matching %v, got %v", target, err)
	}
}
