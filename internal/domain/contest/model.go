package contest

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUpcoming   Status = "UPCOMING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Contest is a pool of fantasy teams competing over one tournament.
type Contest struct {
	ID                  string
	TournamentID        string
	Name                string
	EntryFee            decimal.Decimal
	PrizePool           decimal.Decimal
	MaxEntries          int
	Status              Status
	IsPrizesDistributed bool
	IsPrizesProcessing  bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

const (
	CaptainMultiplier     = 2.0
	ViceCaptainMultiplier = 1.5
)

type RosterMember struct {
	PlayerID      string
	IsCaptain     bool
	IsViceCaptain bool
}

// Multiplier applies exactly one weighting per player. Captain wins if both flags are set.
func (m RosterMember) Multiplier() float64 {
	switch {
	case m.IsCaptain:
		return CaptainMultiplier
	case m.IsViceCaptain:
		return ViceCaptainMultiplier
	default:
		return 1
	}
}

func (m RosterMember) Role() string {
	switch {
	case m.IsCaptain:
		return "captain"
	case m.IsViceCaptain:
		return "vice_captain"
	default:
		return "player"
	}
}

// Team is a user's fantasy team. TotalPoints and Rank are derived and only
// written by recompute operations.
type Team struct {
	ID          string
	ContestID   string
	UserID      string
	Name        string
	Roster      []RosterMember
	TotalPoints float64
	Rank        int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t Team) PlayerIDs() []string {
	out := make([]string, 0, len(t.Roster))
	for _, m := range t.Roster {
		out = append(out, m.PlayerID)
	}
	return out
}

// Standing is one row of a contest leaderboard.
type Standing struct {
	TeamID      string
	UserID      string
	Rank        int
	TotalPoints float64
}
