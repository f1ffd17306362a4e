package postgres

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type tournamentTableModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type matchTableModel struct {
	ID           string         `db:"id"`
	TournamentID string         `db:"tournament_id"`
	Player1ID    string         `db:"player1_id"`
	Player2ID    string         `db:"player2_id"`
	Player1Score int            `db:"player1_score"`
	Player2Score int            `db:"player2_score"`
	Round        sql.NullString `db:"round"`
	Status       string         `db:"status"`
	CompletedAt  *time.Time     `db:"completed_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type playerMatchPointsTableModel struct {
	PlayerID     string    `db:"player_id"`
	MatchID      string    `db:"match_id"`
	TournamentID string    `db:"tournament_id"`
	Points       float64   `db:"points"`
	Breakdown    []byte    `db:"breakdown"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type contestTableModel struct {
	ID                  string          `db:"id"`
	TournamentID        string          `db:"tournament_id"`
	Name                string          `db:"name"`
	EntryFee            decimal.Decimal `db:"entry_fee"`
	PrizePool           decimal.Decimal `db:"prize_pool"`
	MaxEntries          int             `db:"max_entries"`
	Status              string          `db:"status"`
	IsPrizesDistributed bool            `db:"is_prizes_distributed"`
	IsPrizesProcessing  bool            `db:"is_prizes_processing"`
	CreatedAt           time.Time       `db:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"`
}

type teamTableModel struct {
	ID          string    `db:"id"`
	ContestID   string    `db:"contest_id"`
	UserID      string    `db:"user_id"`
	Name        string    `db:"name"`
	TotalPoints float64   `db:"total_points"`
	Rank        int       `db:"rank"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type teamPlayerTableModel struct {
	TeamID        string `db:"team_id"`
	PlayerID      string `db:"player_id"`
	IsCaptain     bool   `db:"is_captain"`
	IsViceCaptain bool   `db:"is_vice_captain"`
	Position      int    `db:"position"`
}

type prizeRuleTableModel struct {
	ID           string          `db:"id"`
	TournamentID string          `db:"tournament_id"`
	ContestID    sql.NullString  `db:"contest_id"`
	Rank         int             `db:"rank"`
	Percentage   decimal.Decimal `db:"percentage"`
	MinPlayers   int             `db:"min_players"`
	CreatedAt    time.Time       `db:"created_at"`
}

type disbursementTableModel struct {
	ID             string          `db:"id"`
	ContestID      string          `db:"contest_id"`
	TeamID         string          `db:"team_id"`
	UserID         string          `db:"user_id"`
	Rank           int             `db:"rank"`
	Percentage     decimal.Decimal `db:"percentage"`
	Amount         decimal.Decimal `db:"amount"`
	ProcessingFee  decimal.Decimal `db:"processing_fee"`
	NetAmount      decimal.Decimal `db:"net_amount"`
	Status         string          `db:"status"`
	TransactionRef sql.NullString  `db:"transaction_ref"`
	FailureReason  sql.NullString  `db:"failure_reason"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

type capturedPaymentTableModel struct {
	PaymentID    string          `db:"payment_id"`
	UserID       string          `db:"user_id"`
	TournamentID string          `db:"tournament_id"`
	ContestID    string          `db:"contest_id"`
	Amount       decimal.Decimal `db:"amount"`
	CapturedAt   time.Time       `db:"captured_at"`
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
