package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
)

type PointsRepository struct {
	store *Store
}

func (r *PointsRepository) UpsertMany(ctx context.Context, rows []points.PlayerMatchPoints) error {
	r.store.write(ctx, func(t *tables) {
		for _, row := range rows {
			key := pointsKey{playerID: row.PlayerID, matchID: row.MatchID}
			if existing, ok := t.points[key]; ok {
				row.CreatedAt = existing.CreatedAt
			}
			t.points[key] = row
		}
	})
	return nil
}

func (r *PointsRepository) ListByMatch(_ context.Context, matchID string) ([]points.PlayerMatchPoints, error) {
	var out []points.PlayerMatchPoints
	r.store.read(func(t *tables) {
		for key, row := range t.points {
			if key.matchID == matchID {
				out = append(out, row)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out, nil
}

func (r *PointsRepository) SumByTournament(_ context.Context, tournamentID string, playerIDs []string) (map[string]float64, error) {
	wanted := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		wanted[id] = struct{}{}
	}

	out := make(map[string]float64, len(playerIDs))
	r.store.read(func(t *tables) {
		for key, row := range t.points {
			if _, ok := wanted[key.playerID]; !ok {
				continue
			}
			owner := row.TournamentID
			if owner == "" {
				owner = t.matches[key.matchID].TournamentID
			}
			if owner != tournamentID {
				continue
			}
			out[key.playerID] += row.Points
		}
	})
	return out, nil
}
