package points

import "context"

type Repository interface {
	// UpsertMany inserts or overwrites rows keyed by (player, match).
	UpsertMany(ctx context.Context, rows []PlayerMatchPoints) error
	ListByMatch(ctx context.Context, matchID string) ([]PlayerMatchPoints, error)
	// SumByTournament totals each player's points over every match of the tournament.
	// Players without rows are absent from the result.
	SumByTournament(ctx context.Context, tournamentID string, playerIDs []string) (map[string]float64, error)
}
