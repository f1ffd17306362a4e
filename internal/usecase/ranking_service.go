package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"go.opentelemetry.io/otel/attribute"
)

type RankingService struct {
	contestRepo contest.Repository
	teamRepo    contest.TeamRepository
	tx          Transactor
}

func NewRankingService(contestRepo contest.Repository, teamRepo contest.TeamRepository, tx Transactor) *RankingService {
	return &RankingService{
		contestRepo: contestRepo,
		teamRepo:    teamRepo,
		tx:          orPassthrough(tx),
	}
}

// RecomputeRankings orders the contest's teams and rewrites every rank.
func (s *RankingService) RecomputeRankings(ctx context.Context, contestID string) ([]contest.Standing, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RankingService.RecomputeRankings", attribute.String("contest_id", contestID))
	defer span.End()

	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return nil, invalidInput("contest id is required")
	}

	var standings []contest.Standing
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.ensureContest(ctx, contestID); err != nil {
			return err
		}
		teams, err := s.teamRepo.ListByContest(ctx, contestID)
		if err != nil {
			return errors.Wrap(err, "list contest teams")
		}

		standings = contest.Rank(teams)
		if len(standings) == 0 {
			return nil
		}
		if err := s.teamRepo.UpdateRanks(ctx, contestID, standings); err != nil {
			return errors.Wrap(err, "update team ranks")
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	return standings, nil
}

// ListRankings returns the last computed leaderboard without recomputing it.
func (s *RankingService) ListRankings(ctx context.Context, contestID string) ([]contest.Standing, error) {
	contestID = strings.TrimSpace(contestID)
	if contestID == "" {
		return nil, invalidInput("contest id is required")
	}
	if err := s.ensureContest(ctx, contestID); err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByContest(ctx, contestID)
	if err != nil {
		return nil, errors.Wrap(err, "list contest teams")
	}
	contest.SortByRank(teams)

	out := make([]contest.Standing, 0, len(teams))
	for _, t := range teams {
		out = append(out, contest.Standing{
			TeamID:      t.ID,
			UserID:      t.UserID,
			Rank:        t.Rank,
			TotalPoints: t.TotalPoints,
		})
	}
	return out, nil
}

func (s *RankingService) ensureContest(ctx context.Context, contestID string) error {
	_, exists, err := s.contestRepo.GetByID(ctx, contestID)
	if err != nil {
		return errors.Wrap(err, "get contest")
	}
	if !exists {
		return notFound("contest=%s", contestID)
	}
	return nil
}
