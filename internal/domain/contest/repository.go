package contest

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	GetByID(ctx context.Context, contestID string) (Contest, bool, error)
	ListByTournament(ctx context.Context, tournamentID string) ([]Contest, error)
	Upsert(ctx context.Context, c Contest) error
	UpdatePrizePool(ctx context.Context, contestID string, pool decimal.Decimal) error

	// ClaimPrizeDistribution sets the processing flag only when the contest is
	// neither distributed nor processing. It reports whether the claim won.
	ClaimPrizeDistribution(ctx context.Context, contestID string) (bool, error)
	// CompletePrizeDistribution marks the contest distributed and completed and clears processing.
	CompletePrizeDistribution(ctx context.Context, contestID string) error
}

type TeamRepository interface {
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	ListByContest(ctx context.Context, contestID string) ([]Team, error)
	Upsert(ctx context.Context, t Team) error
	UpdateTotalPoints(ctx context.Context, teamID string, total float64) error
	UpdateRanks(ctx context.Context, contestID string, standings []Standing) error
}
