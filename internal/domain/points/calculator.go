package points

import "strings"

const (
	PerfectGameBonus   = 15.0
	CloseWinBonus      = 10.0
	CloseWinMargin     = 5
	KnockoutMultiplier = 1.5
)

type BonusReason string

const (
	BonusNone        BonusReason = ""
	BonusPerfectGame BonusReason = "perfect_game"
	BonusCloseWin    BonusReason = "close_win"
)

var knockoutMarkers = []string{"final", "semi", "quarter"}

// IsKnockoutRound matches the round label case-insensitively against
// final/semi/quarter, so "Semifinal" and "QUARTER-FINALS" both qualify.
func IsKnockoutRound(round string) bool {
	lower := strings.ToLower(round)
	for _, marker := range knockoutMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Score computes one player's fantasy points from their own score, the
// opponent's score and the round label. It is pure.
func Score(own, opponent int, round string) Breakdown {
	b := Breakdown{
		BasePoints:         float64(own),
		Won:                own > opponent,
		KnockoutMultiplier: 1,
	}

	if b.Won {
		switch {
		case opponent == 0:
			b.BonusPoints = PerfectGameBonus
			b.BonusReason = BonusPerfectGame
		case own-opponent < CloseWinMargin:
			b.BonusPoints = CloseWinBonus
			b.BonusReason = BonusCloseWin
		}
	}

	if IsKnockoutRound(round) {
		b.IsKnockout = true
		b.KnockoutMultiplier = KnockoutMultiplier
	}

	b.Total = (b.BasePoints + b.BonusPoints) * b.KnockoutMultiplier
	return b
}

// ScoreMatch scores both sides of a completed match.
func ScoreMatch(player1Score, player2Score int, round string) (player1, player2 Breakdown) {
	return Score(player1Score, player2Score, round), Score(player2Score, player1Score, round)
}
