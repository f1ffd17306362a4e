package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/id"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type RuleSource string

const (
	RuleSourceContest    RuleSource = "contest"
	RuleSourceTournament RuleSource = "tournament"
)

// ResolvedRules is the prize table that applies to a contest right now.
type ResolvedRules struct {
	ContestID     string
	Source        RuleSource
	TeamCount     int
	Rules         prize.RuleSet
	PaidPositions int
}

type PrizeRuleService struct {
	contestRepo    contest.Repository
	tournamentRepo tournament.Repository
	teamRepo       contest.TeamRepository
	ruleRepo       prize.RuleRepository
	tx             Transactor
	idGen          id.Generator
	logger         *logging.Logger
	now            func() time.Time
}

func NewPrizeRuleService(
	contestRepo contest.Repository,
	tournamentRepo tournament.Repository,
	teamRepo contest.TeamRepository,
	ruleRepo prize.RuleRepository,
	tx Transactor,
	idGen id.Generator,
	logger *logging.Logger,
) *PrizeRuleService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PrizeRuleService{
		contestRepo:    contestRepo,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		ruleRepo:       ruleRepo,
		tx:             orPassthrough(tx),
		idGen:          idGen,
		logger:         logger,
		now:            time.Now,
	}
}

// ResolveRules picks the contest override or the tournament default and keeps
// the rules whose minimum participant count the contest meets.
func (s *PrizeRuleService) ResolveRules(ctx context.Context, contestID string) (ResolvedRules, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PrizeRuleService.ResolveRules", attribute.String("contest_id", contestID))
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return ResolvedRules{}, invalidInput("contest id is required")
	}

	c, exists, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return ResolvedRules{}, errors.Wrap(err, "get contest")
	}
	if !exists {
		return ResolvedRules{}, notFound("contest=%s", contestID)
	}

	teams, err := s.teamRepo.ListByContest(ctx, contestID)
	if err != nil {
		return ResolvedRules{}, errors.Wrap(err, "list contest teams")
	}

	out, err := s.resolveFor(ctx, c, len(teams))
	recordSpanError(span, err)
	return out, err
}

func (s *PrizeRuleService) resolveFor(ctx context.Context, c contest.Contest, teamCount int) (ResolvedRules, error) {
	source := RuleSourceContest
	stored, err := s.ruleRepo.ListByScope(ctx, prize.ContestScope(c.TournamentID, c.ID))
	if err != nil {
		return ResolvedRules{}, errors.Wrap(err, "list contest prize rules")
	}
	if len(stored) == 0 {
		source = RuleSourceTournament
		stored, err = s.ruleRepo.ListByScope(ctx, prize.TournamentScope(c.TournamentID))
		if err != nil {
			return ResolvedRules{}, errors.Wrap(err, "list tournament prize rules")
		}
	}
	if len(stored) == 0 {
		return ResolvedRules{}, errors.Wrapf(ErrNoRulesDefined, "contest=%s tournament=%s", c.ID, c.TournamentID)
	}

	applicable := prize.RulesOf(stored).Applicable(teamCount)
	if len(applicable) == 0 {
		return ResolvedRules{}, errors.Wrapf(ErrInsufficientParticipants, "contest=%s teams=%d", c.ID, teamCount)
	}

	return ResolvedRules{
		ContestID:     c.ID,
		Source:        source,
		TeamCount:     teamCount,
		Rules:         applicable,
		PaidPositions: prize.PaidPositions(applicable, teamCount),
	}, nil
}

// ReplaceContestRules swaps the contest's override table for rules.
func (s *PrizeRuleService) ReplaceContestRules(ctx context.Context, contestID string, rules []prize.Rule) (prize.RuleSet, error) {
	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return nil, invalidInput("contest id is required")
	}

	var out prize.RuleSet
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, exists, err := s.contestRepo.GetByID(ctx, contestID)
		if err != nil {
			return errors.Wrap(err, "get contest")
		}
		if !exists {
			return notFound("contest=%s", contestID)
		}
		if c.IsPrizesDistributed || c.IsPrizesProcessing {
			return invalidState(ErrInvalidState, "contest=%s prizes are locked", contestID)
		}
		out, err = s.replace(ctx, prize.ContestScope(c.TournamentID, c.ID), rules)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceTournamentRules swaps the tournament's default table for rules.
func (s *PrizeRuleService) ReplaceTournamentRules(ctx context.Context, tournamentID string, rules []prize.Rule) (prize.RuleSet, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return nil, invalidInput("tournament id is required")
	}

	var out prize.RuleSet
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, exists, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
			return errors.Wrap(err, "get tournament")
		} else if !exists {
			return notFound("tournament=%s", tournamentID)
		}
		var err error
		out, err = s.replace(ctx, prize.TournamentScope(tournamentID), rules)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// replace must run inside a transaction so delete and insert land together.
func (s *PrizeRuleService) replace(ctx context.Context, scope prize.Scope, rules []prize.Rule) (prize.RuleSet, error) {
	set, err := prize.NewRuleSet(rules)
	if err != nil {
		return nil, errors.Mark(err, ErrInvalidInput)
	}

	now := s.now().UTC()
	stored := make([]prize.StoredRule, 0, len(set))
	for _, r := range set {
		ruleID, err := s.idGen.NewID()
		if err != nil {
			return nil, errors.Wrap(err, "generate prize rule id")
		}
		stored = append(stored, prize.StoredRule{ID: ruleID, Scope: scope, Rule: r, CreatedAt: now})
	}
	if err := s.ruleRepo.Replace(ctx, scope, stored); err != nil {
		return nil, errors.Wrapf(err, "replace prize rules %s", scope)
	}

	s.logger.InfoContext(ctx, "prize rules replaced", "scope", scope.String(), "ranks", len(set))
	return set, nil
}
