package app

import (
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/pickleball-fantasy/internal/config"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payout"
	payoutclient "github.com/riskibarqy/pickleball-fantasy/internal/infrastructure/payout"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/id"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

type Services struct {
	MatchPoints    *usecase.MatchPointsService
	TeamAggregator *usecase.TeamAggregatorService
	Ranking        *usecase.RankingService
	Recompute      *usecase.RecomputeDispatcher
	PrizeRules     *usecase.PrizeRuleService
	Distribution   *usecase.PrizeDistributionService
	PrizePool      *usecase.PrizePoolService
}

// NewServices wires the use cases over storage. metrics may be nil.
func NewServices(cfg config.Config, storage *Storage, metrics usecase.Metrics, logger *logging.Logger) (*Services, error) {
	if storage == nil {
		return nil, errors.New("storage is required")
	}

	gateway, err := newPayoutGateway(cfg, logger)
	if err != nil {
		return nil, err
	}

	ids := id.NewUUIDGenerator()
	aggregator := usecase.NewTeamAggregatorService(storage.Contests, storage.Teams, storage.Points, storage.Tx)
	ranking := usecase.NewRankingService(storage.Contests, storage.Teams, storage.Tx)
	recompute := usecase.NewRecomputeDispatcher(
		storage.Contests,
		storage.Teams,
		aggregator,
		ranking,
		cfg.RecomputeMaxWorkers,
		metrics,
		logger.Named("recompute"),
	)
	rules := usecase.NewPrizeRuleService(
		storage.Contests,
		storage.Tournaments,
		storage.Teams,
		storage.PrizeRules,
		storage.Tx,
		ids,
		logger.Named("prize_rules"),
	)

	return &Services{
		MatchPoints: usecase.NewMatchPointsService(
			storage.Matches,
			storage.Tournaments,
			storage.Points,
			storage.Tx,
			recompute,
			metrics,
			logger.Named("match_points"),
		),
		TeamAggregator: aggregator,
		Ranking:        ranking,
		Recompute:      recompute,
		PrizeRules:     rules,
		Distribution: usecase.NewPrizeDistributionService(
			storage.Contests,
			storage.Tournaments,
			storage.Teams,
			storage.Disbursements,
			rules,
			storage.Tx,
			gateway,
			ids,
			cfg.ProcessingFeePercent,
			metrics,
			logger.Named("distribution"),
		),
		PrizePool: usecase.NewPrizePoolService(
			storage.Contests,
			storage.Payments,
			rules,
			storage.Tx,
			cfg.PayoutPercent,
			metrics,
			logger.Named("prize_pool"),
		),
	}, nil
}

// newPayoutGateway returns nil when payouts are disabled so disbursements
// stay PENDING for manual settlement.
func newPayoutGateway(cfg config.Config, logger *logging.Logger) (payout.Gateway, error) {
	if !cfg.PayoutEnabled {
		return nil, nil
	}

	client, err := payoutclient.NewClient(payoutclient.ClientConfig{
		BaseURL:         cfg.PayoutBaseURL,
		Token:           cfg.PayoutToken,
		Timeout:         cfg.PayoutTimeout,
		RatePerSecond:   cfg.PayoutRatePerSecond,
		CircuitBreaker:  cfg.PayoutCircuit,
		AccountCacheTTL: cfg.PayoutAccountCache,
		Logger:          logger.Named("payout"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "build payout client")
	}
	return client, nil
}
