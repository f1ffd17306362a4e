package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payment"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// PaymentCapturedEvent is the outcome of a successful entry fee payment.
type PaymentCapturedEvent struct {
	PaymentID    string          `json:"paymentId" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	UserID       string          `json:"userId" validate:"required"`
	TournamentID string          `json:"tournamentId" validate:"required"`
	ContestID    string          `json:"contestId" validate:"required"`
}

type PoolUpdate struct {
	ContestID string
	Duplicate bool
	// Frozen is set when the contest already paid out and the pool is no longer recomputed.
	Frozen    bool
	Entrants  int
	PrizePool decimal.Decimal
	Tier      prize.Tier
}

type PrizePoolService struct {
	contestRepo   contest.Repository
	paymentRepo   payment.Repository
	rules         *PrizeRuleService
	tx            Transactor
	payoutPercent decimal.Decimal
	metrics       Metrics
	logger        *logging.Logger
	now           func() time.Time
}

func NewPrizePoolService(
	contestRepo contest.Repository,
	paymentRepo payment.Repository,
	rules *PrizeRuleService,
	tx Transactor,
	payoutPercent decimal.Decimal,
	metrics Metrics,
	logger *logging.Logger,
) *PrizePoolService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PrizePoolService{
		contestRepo:   contestRepo,
		paymentRepo:   paymentRepo,
		rules:         rules,
		tx:            orPassthrough(tx),
		payoutPercent: payoutPercent,
		metrics:       orNopMetrics(metrics),
		logger:        logger,
		now:           time.Now,
	}
}

// CapturePayment accounts one entry fee, then recomputes the contest prize pool
// and replaces its prize table with the tier for the new entrant count.
// Redelivered events with a known payment id change nothing.
func (s *PrizePoolService) CapturePayment(ctx context.Context, ev PaymentCapturedEvent) (PoolUpdate, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizePoolService.CapturePayment",
		attribute.String("payment_id", ev.PaymentID),
		attribute.String("contest_id", ev.ContestID),
	)
	defer span.End()

	ev.PaymentID = strings.TrimSpace(ev.PaymentID)
	ev.ContestID = strings.TrimSpace(ev.ContestID)
	ev.TournamentID = strings.TrimSpace(ev.TournamentID)
	ev.UserID = strings.TrimSpace(ev.UserID)
	switch {
	case ev.PaymentID == "":
		return PoolUpdate{}, invalidInput("payment id is required")
	case ev.ContestID == "" || ev.TournamentID == "" || ev.UserID == "":
		return PoolUpdate{}, invalidInput("contest, tournament and user ids are required")
	case ev.Amount.IsNegative():
		return PoolUpdate{}, invalidInput("amount must be >= 0")
	}

	out := PoolUpdate{ContestID: ev.ContestID}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, exists, err := s.contestRepo.GetByID(ctx, ev.ContestID)
		if err != nil {
			return errors.Wrap(err, "get contest")
		}
		if !exists {
			return notFound("contest=%s", ev.ContestID)
		}
		if c.TournamentID != ev.TournamentID {
			return invalidInput("contest=%s does not belong to tournament=%s", c.ID, ev.TournamentID)
		}

		inserted, err := s.paymentRepo.Record(ctx, payment.CapturedPayment{
			PaymentID:    ev.PaymentID,
			UserID:       ev.UserID,
			TournamentID: ev.TournamentID,
			ContestID:    ev.ContestID,
			Amount:       ev.Amount,
			CapturedAt:   s.now().UTC(),
		})
		if err != nil {
			return errors.Wrap(err, "record payment")
		}
		if !inserted {
			out.Duplicate = true
			out.PrizePool = c.PrizePool
			return nil
		}

		entrants, err := s.paymentRepo.CountByContest(ctx, c.ID)
		if err != nil {
			return errors.Wrap(err, "count contest entrants")
		}
		out.Entrants = entrants
		if c.IsPrizesDistributed || c.IsPrizesProcessing {
			out.Frozen = true
			out.PrizePool = c.PrizePool
			return nil
		}

		out.PrizePool = prize.Pool(c.EntryFee, entrants, s.payoutPercent)
		out.Tier = prize.TierFor(entrants)
		if err := s.contestRepo.UpdatePrizePool(ctx, c.ID, out.PrizePool); err != nil {
			return errors.Wrap(err, "update prize pool")
		}
		if _, err := s.rules.replace(ctx, prize.ContestScope(c.TournamentID, c.ID), out.Tier.Rules()); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return PoolUpdate{}, err
	}

	s.metrics.PaymentCaptured(out.Duplicate)
	switch {
	case out.Duplicate:
		s.logger.InfoContext(ctx, "duplicate payment ignored", "payment_id", ev.PaymentID, "contest_id", ev.ContestID)
	case out.Frozen:
		s.logger.WarnContext(ctx, "payment captured after distribution, prize pool unchanged",
			"payment_id", ev.PaymentID,
			"contest_id", ev.ContestID,
		)
	default:
		s.logger.InfoContext(ctx, "prize pool recomputed",
			"contest_id", ev.ContestID,
			"entrants", out.Entrants,
			"prize_pool", out.PrizePool,
			"paid_ranks", len(out.Tier.Percentages),
		)
	}
	return out, nil
}
