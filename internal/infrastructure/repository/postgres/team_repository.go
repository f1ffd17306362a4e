package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	qb "github.com/riskibarqy/pickleball-fantasy/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (contest.Team, bool, error) {
	query, args, err := qb.Select("*").From("fantasy_teams").Where(qb.Eq("id", teamID)).ToSQL()
	if err != nil {
		return contest.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return contest.Team{}, false, nil
		}
		return contest.Team{}, false, fmt.Errorf("get team: %w", err)
	}

	teams, err := r.withRosters(ctx, []teamTableModel{row})
	if err != nil {
		return contest.Team{}, false, err
	}
	return teams[0], true, nil
}

func (r *TeamRepository) ListByContest(ctx context.Context, contestID string) ([]contest.Team, error) {
	query, args, err := qb.Select("*").
		From("fantasy_teams").
		Where(qb.Eq("contest_id", contestID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams by contest query: %w", err)
	}

	var rows []teamTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list teams by contest: %w", err)
	}
	return r.withRosters(ctx, rows)
}

func (r *TeamRepository) withRosters(ctx context.Context, rows []teamTableModel) ([]contest.Team, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	query, args, err := qb.Select("*").
		From("fantasy_team_players").
		Where(qb.Expr("team_id = ANY(?)", pq.Array(ids))).
		OrderBy("team_id", "position").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list team players query: %w", err)
	}

	var players []teamPlayerTableModel
	if err := conn(ctx, r.db).SelectContext(ctx, &players, query, args...); err != nil {
		return nil, fmt.Errorf("list team players: %w", err)
	}
	return teamsFromRows(rows, players), nil
}

func teamsFromRows(rows []teamTableModel, players []teamPlayerTableModel) []contest.Team {
	rosters := make(map[string][]contest.RosterMember, len(rows))
	for _, p := range players {
		rosters[p.TeamID] = append(rosters[p.TeamID], contest.RosterMember{
			PlayerID:      p.PlayerID,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
	}

	out := make([]contest.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, contest.Team{
			ID:          row.ID,
			ContestID:   row.ContestID,
			UserID:      row.UserID,
			Name:        row.Name,
			Roster:      rosters[row.ID],
			TotalPoints: row.TotalPoints,
			Rank:        row.Rank,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		})
	}
	return out
}

// Upsert writes the team row and replaces its roster.
func (r *TeamRepository) Upsert(ctx context.Context, item contest.Team) error {
	db := conn(ctx, r.db)

	query, args, err := qb.InsertInto("fantasy_teams").
		Columns("id", "contest_id", "user_id", "name", "total_points", "rank").
		Values(item.ID, item.ContestID, item.UserID, item.Name, item.TotalPoints, item.Rank).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    updated_at = NOW()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert team query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert team: %w", err)
	}

	query, args, err = qb.DeleteFrom("fantasy_team_players").Where(qb.Eq("team_id", item.ID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete team players query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete team players: %w", err)
	}
	if len(item.Roster) == 0 {
		return nil
	}

	players := make([]teamPlayerTableModel, 0, len(item.Roster))
	for i, m := range item.Roster {
		players = append(players, teamPlayerTableModel{
			TeamID:        item.ID,
			PlayerID:      m.PlayerID,
			IsCaptain:     m.IsCaptain,
			IsViceCaptain: m.IsViceCaptain,
			Position:      i,
		})
	}
	query, args, err = qb.InsertModels("fantasy_team_players", players, "")
	if err != nil {
		return fmt.Errorf("build insert team players query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert team players: %w", err)
	}
	return nil
}

func (r *TeamRepository) UpdateTotalPoints(ctx context.Context, teamID string, total float64) error {
	query, args, err := qb.Update("fantasy_teams").
		Set("total_points", total).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team total query: %w", err)
	}
	res, err := conn(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team total: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update team total: team %s not found", teamID)
	}
	return nil
}

// UpdateRanks writes every standing in one statement.
func (r *TeamRepository) UpdateRanks(ctx context.Context, contestID string, standings []contest.Standing) error {
	if len(standings) == 0 {
		return nil
	}

	teamIDs := make([]string, 0, len(standings))
	ranks := make([]int64, 0, len(standings))
	for _, s := range standings {
		teamIDs = append(teamIDs, s.TeamID)
		ranks = append(ranks, int64(s.Rank))
	}

	const query = `UPDATE fantasy_teams AS t
SET rank = v.rank, updated_at = NOW()
FROM unnest($1::text[], $2::int[]) AS v(team_id, rank)
WHERE t.id = v.team_id AND t.contest_id = $3`

	res, err := conn(ctx, r.db).ExecContext(ctx, query, pq.Array(teamIDs), pq.Array(ranks), contestID)
	if err != nil {
		return fmt.Errorf("update team ranks: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && int(n) != len(standings) {
		return fmt.Errorf("update team ranks: updated %d of %d teams in contest %s", n, len(standings), contestID)
	}
	return nil
}
