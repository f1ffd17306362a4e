package points

import "time"

// Breakdown records how a player's match points were derived.
type Breakdown struct {
	BasePoints         float64     `json:"basePoints"`
	BonusPoints        float64     `json:"bonusPoints"`
	BonusReason        BonusReason `json:"bonusReason,omitempty"`
	Won                bool        `json:"won"`
	IsKnockout         bool        `json:"isKnockout"`
	KnockoutMultiplier float64     `json:"knockoutMultiplier"`
	Total              float64     `json:"total"`
}

// PlayerMatchPoints is unique per (PlayerID, MatchID) and is overwritten on recompute.
type PlayerMatchPoints struct {
	PlayerID     string
	MatchID      string
	TournamentID string
	Points       float64
	Breakdown    Breakdown
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
