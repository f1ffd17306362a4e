package tournament

import "context"

type Repository interface {
	GetByID(ctx context.Context, tournamentID string) (Tournament, bool, error)
	Upsert(ctx context.Context, t Tournament) error
}
