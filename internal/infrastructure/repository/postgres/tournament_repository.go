package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/match"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	qb "github.com/riskibarqy/pickleball-fantasy/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db *sqlx.DB
}

func NewTournamentRepository(db *sqlx.DB) *TournamentRepository {
	return &TournamentRepository{db: db}
}

func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	query, args, err := qb.Select("*").From("tournaments").Where(qb.Eq("id", tournamentID)).ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament: %w", err)
	}

	return tournament.Tournament{
		ID:        row.ID,
		Name:      row.Name,
		Status:    tournament.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, true, nil
}

func (r *TournamentRepository) Upsert(ctx context.Context, item tournament.Tournament) error {
	query, args, err := qb.InsertInto("tournaments").
		Columns("id", "name", "status").
		Values(item.ID, item.Name, string(item.Status)).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    status = EXCLUDED.status,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert tournament query: %w", err)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert tournament: %w", err)
	}
	return nil
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").Where(qb.Eq("id", matchID)).ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match: %w", err)
	}

	return match.Match{
		ID:           row.ID,
		TournamentID: row.TournamentID,
		Player1ID:    row.Player1ID,
		Player2ID:    row.Player2ID,
		Player1Score: row.Player1Score,
		Player2Score: row.Player2Score,
		Round:        row.Round.String,
		Status:       match.Status(row.Status),
		CompletedAt:  row.CompletedAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, true, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	query, args, err := qb.InsertInto("matches").
		Columns("id", "tournament_id", "player1_id", "player2_id", "player1_score", "player2_score", "round", "status", "completed_at").
		Values(item.ID, item.TournamentID, item.Player1ID, item.Player2ID, item.Player1Score, item.Player2Score, nullString(item.Round), string(item.Status), item.CompletedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
    player1_id = EXCLUDED.player1_id,
    player2_id = EXCLUDED.player2_id,
    player1_score = EXCLUDED.player1_score,
    player2_score = EXCLUDED.player2_score,
    round = EXCLUDED.round,
    status = EXCLUDED.status,
    completed_at = EXCLUDED.completed_at,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert match query: %w", err)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match: %w", err)
	}
	return nil
}
