package postgres

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
	qb "github.com/riskibarqy/pickleball-fantasy/internal/platform/querybuilder"
)

type PointsRepository struct {
	db *sqlx.DB
}

func NewPointsRepository(db *sqlx.DB) *PointsRepository {
	return &PointsRepository{db: db}
}

func (r *PointsRepository) UpsertMany(ctx context.Context, rows []points.PlayerMatchPoints) error {
	if len(rows) == 0 {
		return nil
	}

	models := make([]playerMatchPointsTableModel, 0, len(rows))
	for _, row := range rows {
		breakdown, err := sonic.Marshal(row.Breakdown)
		if err != nil {
			return fmt.Errorf("encode points breakdown player=%s: %w", row.PlayerID, err)
		}
		models = append(models, playerMatchPointsTableModel{
			PlayerID:     row.PlayerID,
			MatchID:      row.MatchID,
			TournamentID: row.TournamentID,
			Points:       row.Points,
			Breakdown:    breakdown,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		})
	}

	query, args, err := qb.InsertModels("player_match_points", models, `ON CONFLICT (player_id, match_id) DO UPDATE SET
    tournament_id = EXCLUDED.tournament_id,
    points = EXCLUDED.points,
    breakdown = EXCLUDED.breakdown,
    updated_at = EXCLUDED.updated_at`)
	if err != nil {
		return fmt.Errorf("build upsert player match points query: %w", err)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert player match points: %w", err)
	}
	return nil
}

func (r *PointsRepository) ListByMatch(ctx context.Context, matchID string) ([]points.PlayerMatchPoints, error) {
	query, args, err := qb.Select("*").
		From("player_match_points").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player match points query: %w", err)
	}

	var rows []playerMatchPointsTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player match points: %w", err)
	}

	out := make([]points.PlayerMatchPoints, 0, len(rows))
	for _, row := range rows {
		item := points.PlayerMatchPoints{
			PlayerID:     row.PlayerID,
			MatchID:      row.MatchID,
			TournamentID: row.TournamentID,
			Points:       row.Points,
			CreatedAt:    row.CreatedAt,
			UpdatedAt:    row.UpdatedAt,
		}
		if len(row.Breakdown) > 0 {
			if err := sonic.Unmarshal(row.Breakdown, &item.Breakdown); err != nil {
				return nil, fmt.Errorf("decode points breakdown player=%s match=%s: %w", row.PlayerID, row.MatchID, err)
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *PointsRepository) SumByTournament(ctx context.Context, tournamentID string, playerIDs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(playerIDs))
	if len(playerIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("player_id", "SUM(points) AS total").
		From("player_match_points").
		Where(
			qb.Eq("tournament_id", tournamentID),
			qb.Expr("player_id = ANY(?)", pq.Array(playerIDs)),
		).
		GroupBy("player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build sum player points query: %w", err)
	}

	var rows []struct {
		PlayerID string  `db:"player_id"`
		Total    float64 `db:"total"`
	}
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sum player points: %w", err)
	}
	for _, row := range rows {
		out[row.PlayerID] = row.Total
	}
	return out, nil
}
