package memory

import (
	"context"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/match"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
)

type TournamentRepository struct {
	store *Store
}

func (r *TournamentRepository) GetByID(_ context.Context, tournamentID string) (out tournament.Tournament, ok bool, _ error) {
	r.store.read(func(t *tables) {
		out, ok = t.tournaments[tournamentID]
	})
	return out, ok, nil
}

func (r *TournamentRepository) Upsert(ctx context.Context, item tournament.Tournament) error {
	r.store.write(ctx, func(t *tables) {
		t.tournaments[item.ID] = item
	})
	return nil
}

type MatchRepository struct {
	store *Store
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (out match.Match, ok bool, _ error) {
	r.store.read(func(t *tables) {
		out, ok = t.matches[matchID]
	})
	return out, ok, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, item match.Match) error {
	r.store.write(ctx, func(t *tables) {
		t.matches[item.ID] = item
	})
	return nil
}
