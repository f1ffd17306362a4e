package points

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreMatch_PerfectGameRegularRound(t *testing.T) {
	winner, loser := ScoreMatch(11, 0, "Round 1")

	assert.Equal(t, 11.0, winner.BasePoints)
	assert.Equal(t, PerfectGameBonus, winner.BonusPoints)
	assert.Equal(t, BonusPerfectGame, winner.BonusReason)
	assert.False(t, winner.IsKnockout)
	assert.Equal(t, 1.0, winner.KnockoutMultiplier)
	assert.Equal(t, 26.0, winner.Total)

	assert.Equal(t, 0.0, loser.Total)
	assert.Equal(t, BonusNone, loser.BonusReason)
}

func TestScoreMatch_CloseWinInSemifinal(t *testing.T) {
	winner, loser := ScoreMatch(11, 8, "Semifinal")

	assert.Equal(t, CloseWinBonus, winner.BonusPoints)
	assert.True(t, winner.IsKnockout)
	assert.Equal(t, 31.5, winner.Total)

	assert.Equal(t, 8.0, loser.BasePoints)
	assert.Equal(t, 0.0, loser.BonusPoints)
	assert.Equal(t, 12.0, loser.Total)
}

func TestScore_Cases(t *testing.T) {
	tests := []struct {
		name      string
		own, opp  int
		round     string
		wantBonus float64
		wantTotal float64
	}{
		{name: "zero zero draw", own: 0, opp: 0, round: "Final", wantBonus: 0, wantTotal: 0},
		{name: "wide margin no bonus", own: 11, opp: 3, round: "Round 2", wantBonus: 0, wantTotal: 11},
		{name: "margin of exactly five", own: 11, opp: 6, round: "Pool", wantBonus: 0, wantTotal: 11},
		{name: "margin of four", own: 11, opp: 7, round: "Pool", wantBonus: 10, wantTotal: 21},
		{name: "loser gets base only", own: 9, opp: 11, round: "Pool", wantBonus: 0, wantTotal: 9},
		{name: "shutout in quarterfinal", own: 11, opp: 0, round: "QUARTER-FINAL", wantBonus: 15, wantTotal: 39},
		{name: "win by two in final", own: 12, opp: 10, round: "Grand Final", wantBonus: 10, wantTotal: 33},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.own, tc.opp, tc.round)
			assert.Equal(t, tc.wantBonus, got.BonusPoints)
			assert.Equal(t, tc.wantTotal, got.Total)
		})
	}
}

func TestScore_IsReproducible(t *testing.T) {
	assert.Equal(t, Score(11, 9, "semi"), Score(11, 9, "semi"))
}

func TestIsKnockoutRound(t *testing.T) {
	assert.True(t, IsKnockoutRound("Final"))
	assert.True(t, IsKnockoutRound("semi-final"))
	assert.True(t, IsKnockoutRound("Quarterfinals"))
	assert.False(t, IsKnockoutRound("Round of 16"))
	assert.False(t, IsKnockoutRound(""))
}
