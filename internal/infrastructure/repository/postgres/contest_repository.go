package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	qb "github.com/riskibarqy/pickleball-fantasy/internal/platform/querybuilder"
	"github.com/shopspring/decimal"
)

type ContestRepository struct {
	db *sqlx.DB
}

func NewContestRepository(db *sqlx.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

func (r *ContestRepository) GetByID(ctx context.Context, contestID string) (contest.Contest, bool, error) {
	query, args, err := qb.Select("*").From("fantasy_contests").Where(qb.Eq("id", contestID)).ToSQL()
	if err != nil {
		return contest.Contest{}, false, fmt.Errorf("build get contest query: %w", err)
	}

	var row contestTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Contest{}, false, nil
		}
		return contest.Contest{}, false, fmt.Errorf("get contest: %w", err)
	}
	return contestFromRow(row), true, nil
}

func (r *ContestRepository) ListByTournament(ctx context.Context, tournamentID string) ([]contest.Contest, error) {
	query, args, err := qb.Select("*").
		From("fantasy_contests").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list contests by tournament query: %w", err)
	}

	var rows []contestTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list contests by tournament: %w", err)
	}

	out := make([]contest.Contest, 0, len(rows))
	for _, row := range rows {
		out = append(out, contestFromRow(row))
	}
	return out, nil
}

func (r *ContestRepository) Upsert(ctx context.Context, item contest.Contest) error {
	query, args, err := qb.InsertInto("fantasy_contests").
		Columns("id", "tournament_id", "name", "entry_fee", "prize_pool", "max_entries", "status", "is_prizes_distributed", "is_prizes_processing").
		Values(item.ID, item.TournamentID, item.Name, item.EntryFee, item.PrizePool, item.MaxEntries, string(item.Status), item.IsPrizesDistributed, item.IsPrizesProcessing).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    entry_fee = EXCLUDED.entry_fee,
    prize_pool = EXCLUDED.prize_pool,
    max_entries = EXCLUDED.max_entries,
    status = EXCLUDED.status,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert contest query: %w", err)
	}
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert contest: %w", err)
	}
	return nil
}

func (r *ContestRepository) UpdatePrizePool(ctx context.Context, contestID string, pool decimal.Decimal) error {
	query, args, err := qb.Update("fantasy_contests").
		Set("prize_pool", pool).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", contestID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update prize pool query: %w", err)
	}
	return r.execOne(ctx, "update prize pool", contestID, query, args)
}

func (r *ContestRepository) ClaimPrizeDistribution(ctx context.Context, contestID string) (bool, error) {
	query, args, err := qb.Update("fantasy_contests").
		Set("is_prizes_processing", true).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", contestID),
			qb.IsFalse("is_prizes_distributed"),
			qb.IsFalse("is_prizes_processing"),
		).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build claim prize distribution query: %w", err)
	}

	var claimedID string
	if err := conn(ctx, r.db).GetContext(ctx, &claimedID, query, args...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("claim prize distribution: %w", err)
	}
	return true, nil
}

func (r *ContestRepository) CompletePrizeDistribution(ctx context.Context, contestID string) error {
	query, args, err := qb.Update("fantasy_contests").
		Set("is_prizes_distributed", true).
		Set("is_prizes_processing", false).
		Set("status", string(contest.StatusCompleted)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", contestID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build complete prize distribution query: %w", err)
	}
	return r.execOne(ctx, "complete prize distribution", contestID, query, args)
}

func (r *ContestRepository) execOne(ctx context.Context, op, contestID, query string, args []any) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: contest %s not found", op, contestID)
	}
	return nil
}

func contestFromRow(row contestTableModel) contest.Contest {
	return contest.Contest{
		ID:                  row.ID,
		TournamentID:        row.TournamentID,
		Name:                row.Name,
		EntryFee:            row.EntryFee,
		PrizePool:           row.PrizePool,
		MaxEntries:          row.MaxEntries,
		Status:              contest.Status(row.Status),
		IsPrizesDistributed: row.IsPrizesDistributed,
		IsPrizesProcessing:  row.IsPrizesProcessing,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}
