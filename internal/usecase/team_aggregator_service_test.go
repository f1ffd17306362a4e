package usecase

import (
	"testing"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/match"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamAggregatorService_CaptainAndViceCaptainWeights(t *testing.T) {
	s := newServices(t, nil)
	seedTournament(t, s, tournament.StatusInProgress)
	seedContest(t, s, decimal.Zero)
	ctx := t.Context()

	require.NoError(t, s.store.Matches().Upsert(ctx, match.Match{ID: "m-1", TournamentID: testTournamentID}))
	require.NoError(t, s.store.Points().UpsertMany(ctx, []points.PlayerMatchPoints{
		{PlayerID: "cap", MatchID: "m-1", TournamentID: testTournamentID, Points: 31.5},
		{PlayerID: "vice", MatchID: "m-1", TournamentID: testTournamentID, Points: 12},
		{PlayerID: "p3", MatchID: "m-1", TournamentID: testTournamentID, Points: 5},
		{PlayerID: "p4", MatchID: "m-1", TournamentID: testTournamentID, Points: 5},
		{PlayerID: "cap", MatchID: "m-other", TournamentID: "another-tour", Points: 1000},
	}))
	require.NoError(t, s.store.Teams().Upsert(ctx, contest.Team{
		ID: "team-1", ContestID: testContestID, UserID: "u1",
		Roster: []contest.RosterMember{
			{PlayerID: "cap", IsCaptain: true},
			{PlayerID: "vice", IsViceCaptain: true},
			{PlayerID: "p3"},
			{PlayerID: "p4"},
			{PlayerID: "bench"},
		},
	}))

	total, err := s.aggregator.RecomputeTeamTotal(ctx, "team-1")
	require.NoError(t, err)
	assert.InDelta(t, 91, total.TotalPoints, 1e-9)
	require.Len(t, total.Players, 5)
	assert.Equal(t, "captain", total.Players[0].Role)
	assert.InDelta(t, 63, total.Players[0].Contribution, 1e-9)
	assert.InDelta(t, 0, total.Players[4].Contribution, 1e-9)

	again, err := s.aggregator.RecomputeTeamTotal(ctx, "team-1")
	require.NoError(t, err)
	assert.Equal(t, total.TotalPoints, again.TotalPoints)

	stored, _, _ := s.store.Teams().GetByID(ctx, "team-1")
	assert.InDelta(t, 91, stored.TotalPoints, 1e-9)
}

func TestTeamAggregatorService_MissingTeam(t *testing.T) {
	s := newServices(t, nil)

	_, err := s.aggregator.RecomputeTeamTotal(t.Context(), "nope")
	assertErrorIs(t, err, ErrNotFound)
}

func TestAggregateTeam_DoubleFlaggedPlayerCountsOnce(t *testing.T) {
	out := aggregateTeam(contest.Team{
		ID:     "t",
		Roster: []contest.RosterMember{{PlayerID: "p", IsCaptain: true, IsViceCaptain: true}},
	}, map[string]float64{"p": 10})

	assert.InDelta(t, 20, out.TotalPoints, 1e-9)
}
