package usecase

import (
	"testing"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrizeRuleService_ResolveRules(t *testing.T) {
	s := newServices(t, nil)
	seedTournament(t, s, tournament.StatusInProgress)
	seedContest(t, s, decimal.NewFromInt(100))
	seedTeams(t, s, 2)

	_, err := s.rules.ResolveRules(t.Context(), testContestID)
	assertErrorIs(t, err, ErrNoRulesDefined)

	seedTournamentRules(t, s,
		prize.Rule{Rank: 1, Percentage: pct(60), MinPlayers: 1},
		prize.Rule{Rank: 2, Percentage: pct(40), MinPlayers: 3},
	)
	resolved, err := s.rules.ResolveRules(t.Context(), testContestID)
	require.NoError(t, err)
	assert.Equal(t, RuleSourceTournament, resolved.Source)
	assert.Equal(t, 2, resolved.TeamCount)
	assert.Len(t, resolved.Rules, 1)
	assert.Equal(t, 1, resolved.PaidPositions)
}

func TestPrizeRuleService_ReplaceRejectsBadTables(t *testing.T) {
	s := newServices(t, nil)
	seedTournament(t, s, tournament.StatusInProgress)
	seedContest(t, s, decimal.NewFromInt(100))

	_, err := s.rules.ReplaceContestRules(t.Context(), testContestID, []prize.Rule{
		{Rank: 1, Percentage: pct(60), MinPlayers: 1},
		{Rank: 2, Percentage: pct(39), MinPlayers: 1},
	})
	assertErrorIs(t, err, ErrInvalidInput)
	assertErrorIs(t, err, prize.ErrPercentageSumNot100)

	_, err = s.rules.ReplaceContestRules(t.Context(), testContestID, []prize.Rule{
		{Rank: 1, Percentage: decimal.RequireFromString("33.334"), MinPlayers: 1},
		{Rank: 2, Percentage: decimal.RequireFromString("33.333"), MinPlayers: 1},
		{Rank: 3, Percentage: decimal.RequireFromString("33.333"), MinPlayers: 1},
	})
	assertErrorIs(t, err, ErrInvalidInput)
	assertErrorIs(t, err, prize.ErrPercentagePrecision)
	stored, err := s.store.PrizeRules().ListByScope(t.Context(), prize.ContestScope(testTournamentID, testContestID))
	require.NoError(t, err)
	assert.Empty(t, stored)

	_, err = s.rules.ReplaceTournamentRules(t.Context(), "missing", []prize.Rule{{Rank: 1, Percentage: pct(100), MinPlayers: 1}})
	assertErrorIs(t, err, ErrNotFound)
}

func TestPrizeRuleService_ContestRulesLockedAfterDistribution(t *testing.T) {
	s := newServices(t, nil)
	seedTournament(t, s, tournament.StatusCompleted)
	seedContest(t, s, decimal.NewFromInt(100))
	seedTeams(t, s, 1)
	seedTournamentRules(t, s, prize.Rule{Rank: 1, Percentage: pct(100), MinPlayers: 1})

	_, err := s.distribution.DistributePrizes(t.Context(), testContestID)
	require.NoError(t, err)

	_, err = s.rules.ReplaceContestRules(t.Context(), testContestID, []prize.Rule{{Rank: 1, Percentage: pct(100), MinPlayers: 1}})
	assertErrorIs(t, err, ErrInvalidState)
}
