package match

import "context"

type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	Upsert(ctx context.Context, m Match) error
}
