package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payout"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/id"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const reasonAccountNotFound = "payout account not found"

type DistributionResult struct {
	ContestID     string
	Success       bool
	PrizePool     decimal.Decimal
	RuleSource    RuleSource
	Disbursements []prize.Disbursement
	FailedPayouts int
}

// PayoutUpdate is a status report from the payout provider for one disbursement.
type PayoutUpdate struct {
	DisbursementID string
	Status         prize.DisbursementStatus
	TransactionRef string
	Reason         string
}

type PrizeDistributionService struct {
	contestRepo      contest.Repository
	tournamentRepo   tournament.Repository
	teamRepo         contest.TeamRepository
	disbursementRepo prize.DisbursementRepository
	rules            *PrizeRuleService
	tx               Transactor
	gateway          payout.Gateway
	idGen            id.Generator
	feePercent       decimal.Decimal
	metrics          Metrics
	logger           *logging.Logger
	now              func() time.Time
}

// NewPrizeDistributionService builds the service. gateway may be nil, in which
// case disbursements stay PENDING for an out-of-band payout run.
func NewPrizeDistributionService(
	contestRepo contest.Repository,
	tournamentRepo tournament.Repository,
	teamRepo contest.TeamRepository,
	disbursementRepo prize.DisbursementRepository,
	rules *PrizeRuleService,
	tx Transactor,
	gateway payout.Gateway,
	idGen id.Generator,
	feePercent decimal.Decimal,
	metrics Metrics,
	logger *logging.Logger,
) *PrizeDistributionService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PrizeDistributionService{
		contestRepo:      contestRepo,
		tournamentRepo:   tournamentRepo,
		teamRepo:         teamRepo,
		disbursementRepo: disbursementRepo,
		rules:            rules,
		tx:               orPassthrough(tx),
		gateway:          gateway,
		idGen:            idGen,
		feePercent:       feePercent,
		metrics:          orNopMetrics(metrics),
		logger:           logger,
		now:              time.Now,
	}
}

// DistributePrizes splits the contest prize pool across the ranked teams and
// records one PENDING disbursement per winner, exactly once per contest.
//
// The claim, the disbursement rows and the distributed flag commit together.
// Payout handoff runs after the commit: a failed payout is recorded on its
// own row as FAILED and never undoes the distribution. Failed payouts are
// settled manually, not by calling DistributePrizes again.
func (s *PrizeDistributionService) DistributePrizes(ctx context.Context, contestID string) (result DistributionResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeDistributionService.DistributePrizes", attribute.String("contest_id", contestID))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return DistributionResult{}, invalidInput("contest id is required")
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.checkDistributable(ctx, contestID)
		if err != nil {
			return err
		}

		teams, err := s.teamRepo.ListByContest(ctx, contestID)
		if err != nil {
			return errors.Wrap(err, "list contest teams")
		}
		if len(teams) == 0 {
			return errors.Wrapf(ErrNoParticipants, "contest=%s", contestID)
		}

		claimed, err := s.contestRepo.ClaimPrizeDistribution(ctx, contestID)
		if err != nil {
			return errors.Wrap(err, "claim prize distribution")
		}
		if !claimed {
			return s.claimLost(ctx, contestID)
		}

		resolved, err := s.rules.resolveFor(ctx, c, len(teams))
		if err != nil {
			return err
		}

		rows, err := s.buildDisbursements(c, contest.Rank(teams), resolved)
		if err != nil {
			return err
		}
		if err := s.disbursementRepo.InsertMany(ctx, rows); err != nil {
			return errors.Wrap(err, "insert disbursements")
		}
		if err := s.contestRepo.CompletePrizeDistribution(ctx, contestID); err != nil {
			return errors.Wrap(err, "mark contest distributed")
		}

		result = DistributionResult{
			ContestID:     contestID,
			Success:       true,
			PrizePool:     c.PrizePool,
			RuleSource:    resolved.Source,
			Disbursements: rows,
		}
		return nil
	})
	if err != nil {
		return DistributionResult{}, err
	}

	s.metrics.DistributionCompleted(len(result.Disbursements))
	if s.gateway != nil {
		result.FailedPayouts = s.handOff(ctx, result.Disbursements)
	}

	s.logger.InfoContext(ctx, "prizes distributed",
		"contest_id", contestID,
		"prize_pool", result.PrizePool,
		"winners", len(result.Disbursements),
		"failed_payouts", result.FailedPayouts,
		"rule_source", string(result.RuleSource),
	)
	return result, nil
}

func (s *PrizeDistributionService) checkDistributable(ctx context.Context, contestID string) (contest.Contest, error) {
	c, exists, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return contest.Contest{}, errors.Wrap(err, "get contest")
	}
	if !exists {
		return contest.Contest{}, notFound("contest=%s", contestID)
	}
	if c.IsPrizesDistributed {
		return contest.Contest{}, invalidState(ErrAlreadyDistributed, "contest=%s", contestID)
	}
	if c.Status == contest.StatusCancelled {
		return contest.Contest{}, invalidState(ErrInvalidState, "contest=%s is cancelled", contestID)
	}

	t, exists, err := s.tournamentRepo.GetByID(ctx, c.TournamentID)
	if err != nil {
		return contest.Contest{}, errors.Wrap(err, "get tournament")
	}
	if !exists {
		return contest.Contest{}, notFound("tournament=%s", c.TournamentID)
	}
	if !t.IsCompleted() {
		return contest.Contest{}, invalidState(ErrInvalidState, "tournament=%s status=%s", t.ID, t.Status)
	}
	return c, nil
}

// claimLost explains why the conditional flag update matched no row.
func (s *PrizeDistributionService) claimLost(ctx context.Context, contestID string) error {
	c, _, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return errors.Wrap(err, "reload contest")
	}
	if c.IsPrizesDistributed {
		return invalidState(ErrAlreadyDistributed, "contest=%s", contestID)
	}
	return invalidState(ErrDistributionInProgress, "contest=%s", contestID)
}

func (s *PrizeDistributionService) buildDisbursements(c contest.Contest, ranked []contest.Standing, resolved ResolvedRules) ([]prize.Disbursement, error) {
	now := s.now().UTC()
	rows := make([]prize.Disbursement, 0, resolved.PaidPositions)
	for i := 0; i < resolved.PaidPositions; i++ {
		winner := ranked[i]
		rule := resolved.Rules[i]
		amounts := prize.Split(c.PrizePool, rule.Percentage, s.feePercent)

		disbursementID, err := s.idGen.NewID()
		if err != nil {
			return nil, errors.Wrap(err, "generate disbursement id")
		}
		rows = append(rows, prize.Disbursement{
			ID:            disbursementID,
			ContestID:     c.ID,
			TeamID:        winner.TeamID,
			UserID:        winner.UserID,
			Rank:          i + 1,
			Percentage:    rule.Percentage,
			Amount:        amounts.Gross,
			ProcessingFee: amounts.Fee,
			NetAmount:     amounts.Net,
			Status:        prize.DisbursementPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	return rows, nil
}

// handOff sends each disbursement to the payout provider. Every failure stays
// local to its row; the loop always continues.
func (s *PrizeDistributionService) handOff(ctx context.Context, rows []prize.Disbursement) int {
	failed := 0
	for i := range rows {
		d := rows[i]
		if payoutErr := s.payOne(ctx, &d); payoutErr != nil {
			failed++
			d.Status = prize.DisbursementFailed
			d.FailureReason = payoutErr.Error()
			s.logger.WarnContext(ctx, "payout handoff failed",
				"disbursement_id", d.ID,
				"contest_id", d.ContestID,
				"user_id", d.UserID,
				"error", errors.Mark(payoutErr, ErrPayoutFailure),
			)
		}
		d.UpdatedAt = s.now().UTC()
		s.metrics.PayoutAttempted(string(d.Status))

		if err := s.disbursementRepo.UpdatePayout(ctx, d); err != nil {
			s.logger.ErrorContext(ctx, "record payout outcome failed",
				"disbursement_id", d.ID,
				"status", string(d.Status),
				"error", err,
			)
			continue
		}
		rows[i] = d
	}
	return failed
}

func (s *PrizeDistributionService) payOne(ctx context.Context, d *prize.Disbursement) error {
	acct, found, err := s.gateway.LookupAccount(ctx, d.UserID)
	if err != nil {
		return errors.Wrap(err, "lookup payout account")
	}
	if !found {
		return errors.New(reasonAccountNotFound)
	}

	res, err := s.gateway.Transfer(ctx, payout.TransferRequest{
		DisbursementID: d.ID,
		ContestID:      d.ContestID,
		UserID:         d.UserID,
		Amount:         d.NetAmount,
		Account:        acct,
	})
	if err != nil {
		return errors.Wrap(err, "transfer")
	}
	d.Status = prize.DisbursementProcessing
	d.TransactionRef = res.TransactionRef
	return nil
}

func (s *PrizeDistributionService) ListDisbursements(ctx context.Context, contestID string) ([]prize.Disbursement, error) {
	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return nil, invalidInput("contest id is required")
	}
	if _, exists, err := s.contestRepo.GetByID(ctx, contestID); err != nil {
		return nil, errors.Wrap(err, "get contest")
	} else if !exists {
		return nil, notFound("contest=%s", contestID)
	}

	rows, err := s.disbursementRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, errors.Wrap(err, "list disbursements")
	}
	return rows, nil
}

// ApplyPayoutUpdate advances a disbursement along
// PENDING -> PROCESSING -> PAID|FAILED. PAID and FAILED are final.
// Reporting the current status again is a no-op.
func (s *PrizeDistributionService) ApplyPayoutUpdate(ctx context.Context, update PayoutUpdate) (prize.Disbursement, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeDistributionService.ApplyPayoutUpdate", attribute.String("disbursement_id", update.DisbursementID))
	defer span.End()

	update.DisbursementID = strings.TrimSpace(update.DisbursementID)
	if update.DisbursementID == "" {
		return prize.Disbursement{}, invalidInput("disbursement id is required")
	}
	if !update.Status.Valid() {
		return prize.Disbursement{}, invalidInput("unknown disbursement status %q", update.Status)
	}

	var out prize.Disbursement
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		d, exists, err := s.disbursementRepo.GetByID(ctx, update.DisbursementID)
		if err != nil {
			return errors.Wrap(err, "get disbursement")
		}
		if !exists {
			return notFound("disbursement=%s", update.DisbursementID)
		}
		if d.Status == update.Status {
			out = d
			return nil
		}
		if !d.Status.CanTransitionTo(update.Status) {
			return invalidState(ErrInvalidState, "disbursement=%s cannot move %s -> %s", d.ID, d.Status, update.Status)
		}

		d.Status = update.Status
		if ref := strings.TrimSpace(update.TransactionRef); ref != "" {
			d.TransactionRef = ref
		}
		if update.Status == prize.DisbursementFailed {
			d.FailureReason = strings.TrimSpace(update.Reason)
		}
		d.UpdatedAt = s.now().UTC()
		if err := s.disbursementRepo.UpdatePayout(ctx, d); err != nil {
			return errors.Wrap(err, "update disbursement")
		}
		out = d
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return prize.Disbursement{}, err
	}
	s.metrics.PayoutAttempted(string(out.Status))
	return out, nil
}
