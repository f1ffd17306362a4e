package match

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var ErrInvalidMatch = errors.New("invalid match")

// Match is a single pickleball match between two players in a tournament.
type Match struct {
	ID           string
	TournamentID string
	Player1ID    string
	Player2ID    string
	Player1Score int
	Player2Score int
	Round        string
	Status       Status
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m Match) IsCompleted() bool {
	return m.Status == StatusCompleted
}

// SameResult reports whether other carries the same final facts.
func (m Match) SameResult(other Match) bool {
	return m.Player1ID == other.Player1ID &&
		m.Player2ID == other.Player2ID &&
		m.Player1Score == other.Player1Score &&
		m.Player2Score == other.Player2Score &&
		strings.EqualFold(strings.TrimSpace(m.Round), strings.TrimSpace(other.Round))
}

func (m Match) Validate() error {
	switch {
	case strings.TrimSpace(m.ID) == "":
		return fmt.Errorf("%w: match id is required", ErrInvalidMatch)
	case strings.TrimSpace(m.TournamentID) == "":
		return fmt.Errorf("%w: tournament id is required", ErrInvalidMatch)
	case strings.TrimSpace(m.Player1ID) == "" || strings.TrimSpace(m.Player2ID) == "":
		return fmt.Errorf("%w: both player ids are required", ErrInvalidMatch)
	case m.Player1ID == m.Player2ID:
		return fmt.Errorf("%w: a player cannot face themselves", ErrInvalidMatch)
	case m.Player1Score < 0 || m.Player2Score < 0:
		return fmt.Errorf("%w: scores must be >= 0", ErrInvalidMatch)
	}
	return nil
}
