package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "total_points").
		From("fantasy_teams").
		Where(Eq("contest_id", "c1"), IsNull("deleted_at")).
		OrderBy("total_points DESC", "created_at ASC").
		Limit(10).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, total_points FROM fantasy_teams WHERE contest_id = $1 AND deleted_at IS NULL ORDER BY total_points DESC, created_at ASC LIMIT 10", query)
	assert.Equal(t, []any{"c1"}, args)
}

func TestSelectBuilder_ForUpdateAndIn(t *testing.T) {
	query, args, err := Select("id").
		From("fantasy_contests").
		Where(In("id", []any{"a", "b"}), Expr("entry_fee > ?", 10)).
		ForUpdate().
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM fantasy_contests WHERE id IN ($1, $2) AND entry_fee > $3 FOR UPDATE", query)
	assert.Equal(t, []any{"a", "b", 10}, args)
}

func TestSelectBuilder_EmptyInMatchesNothing(t *testing.T) {
	query, args, err := Select("id").From("matches").Where(In("tournament_id", nil)).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM matches WHERE 1=0", query)
	assert.Empty(t, args)
}

func TestSelectBuilder_GroupBy(t *testing.T) {
	query, args, err := Select("player_id", "SUM(points) AS total").
		From("player_match_points").
		Where(Eq("tournament_id", "t1")).
		GroupBy("player_id").
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT player_id, SUM(points) AS total FROM player_match_points WHERE tournament_id = $1 GROUP BY player_id", query)
	assert.Equal(t, []any{"t1"}, args)
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("player_match_points").
		Columns("player_id", "match_id", "points").
		Values("p1", "m1", 26.0).
		Values("p2", "m1", 0.0).
		Suffix("ON CONFLICT (player_id, match_id) DO UPDATE SET points = EXCLUDED.points").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO player_match_points (player_id, match_id, points) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT (player_id, match_id) DO UPDATE SET points = EXCLUDED.points", query)
	assert.Len(t, args, 6)
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL()
	assert.Error(t, err)
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("fantasy_contests").
		Set("is_prizes_processing", true).
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "c1"), IsFalse("is_prizes_distributed"), IsFalse("is_prizes_processing")).
		Suffix("RETURNING id").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE fantasy_contests SET is_prizes_processing = $1, updated_at = NOW() WHERE id = $2 AND NOT is_prizes_distributed AND NOT is_prizes_processing RETURNING id", query)
	assert.Equal(t, []any{true, "c1"}, args)
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("prize_distribution_rules").
		Where(Eq("contest_id", "c1")).
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM prize_distribution_rules WHERE contest_id = $1", query)
	assert.Equal(t, []any{"c1"}, args)

	_, _, err = DeleteFrom("prize_distribution_rules").ToSQL()
	assert.Error(t, err)
}

type ruleRow struct {
	ID         string  `db:"id"`
	Rank       int     `db:"rank"`
	Percentage float64 `db:"percentage,omitempty"`
	Ignored    string  `db:"-"`
	internal   string
}

func TestInsertModels(t *testing.T) {
	rows := []ruleRow{{ID: "r1", Rank: 1, Percentage: 70}, {ID: "r2", Rank: 2, Percentage: 30, internal: "x"}}

	query, args, err := InsertModels("prize_distribution_rules", rows, "")
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO prize_distribution_rules (id, rank, percentage) VALUES ($1, $2, $3), ($4, $5, $6)", query)
	assert.Equal(t, []any{"r1", 1, 70.0, "r2", 2, 30.0}, args)
}

func TestInsertModel_RejectsNonStruct(t *testing.T) {
	_, _, err := InsertModel("t", 5, "")
	assert.Error(t, err)
}
