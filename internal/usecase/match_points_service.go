package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/match"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// TournamentRecomputer refreshes derived team totals and rankings for a tournament.
type TournamentRecomputer interface {
	RecomputeTournament(ctx context.Context, tournamentID string) (TournamentRecompute, error)
}

type PlayerPoints struct {
	PlayerID  string
	Points    float64
	Breakdown points.Breakdown
}

type MatchPointsResult struct {
	MatchID      string
	TournamentID string
	Player1      PlayerPoints
	Player2      PlayerPoints
	Recompute    *TournamentRecompute
}

// MatchCompletedEvent is the final result of a match as reported upstream.
type MatchCompletedEvent struct {
	MatchID      string `json:"matchId" validate:"required"`
	TournamentID string `json:"tournamentId" validate:"required"`
	Player1ID    string `json:"player1Id" validate:"required"`
	Player2ID    string `json:"player2Id" validate:"required,nefield=Player1ID"`
	Player1Score int    `json:"player1Score" validate:"gte=0"`
	Player2Score int    `json:"player2Score" validate:"gte=0"`
	Round        string `json:"round"`
}

type MatchPointsService struct {
	matchRepo      match.Repository
	tournamentRepo tournament.Repository
	pointsRepo     points.Repository
	tx             Transactor
	recomputer     TournamentRecomputer
	metrics        Metrics
	logger         *logging.Logger
	now            func() time.Time
}

func NewMatchPointsService(
	matchRepo match.Repository,
	tournamentRepo tournament.Repository,
	pointsRepo points.Repository,
	tx Transactor,
	recomputer TournamentRecomputer,
	metrics Metrics,
	logger *logging.Logger,
) *MatchPointsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MatchPointsService{
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		pointsRepo:     pointsRepo,
		tx:             orPassthrough(tx),
		recomputer:     recomputer,
		metrics:        orNopMetrics(metrics),
		logger:         logger,
		now:            time.Now,
	}
}

// RecordMatchPoints scores a completed match and upserts one row per player.
// After the rows commit, team totals and rankings for the tournament are refreshed.
func (s *MatchPointsService) RecordMatchPoints(ctx context.Context, matchID string) (result MatchPointsResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchPointsService.RecordMatchPoints", attribute.String("match_id", matchID))
	defer func() {
		recordSpanError(span, err)
		span.End()
	}()

	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return MatchPointsResult{}, invalidInput("match id is required")
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		m, exists, err := s.matchRepo.GetByID(ctx, matchID)
		if err != nil {
			return errors.Wrap(err, "get match")
		}
		if !exists {
			return notFound("match=%s", matchID)
		}
		if !m.IsCompleted() {
			return invalidState(ErrInvalidState, "match=%s status=%s", matchID, m.Status)
		}

		b1, b2 := points.ScoreMatch(m.Player1Score, m.Player2Score, m.Round)
		now := s.now().UTC()
		rows := []points.PlayerMatchPoints{
			{PlayerID: m.Player1ID, MatchID: m.ID, TournamentID: m.TournamentID, Points: b1.Total, Breakdown: b1, CreatedAt: now, UpdatedAt: now},
			{PlayerID: m.Player2ID, MatchID: m.ID, TournamentID: m.TournamentID, Points: b2.Total, Breakdown: b2, CreatedAt: now, UpdatedAt: now},
		}
		if err := s.pointsRepo.UpsertMany(ctx, rows); err != nil {
			return errors.Wrap(err, "upsert player match points")
		}

		result = MatchPointsResult{
			MatchID:      m.ID,
			TournamentID: m.TournamentID,
			Player1:      PlayerPoints{PlayerID: m.Player1ID, Points: b1.Total, Breakdown: b1},
			Player2:      PlayerPoints{PlayerID: m.Player2ID, Points: b2.Total, Breakdown: b2},
		}
		return nil
	})
	if err != nil {
		return MatchPointsResult{}, err
	}
	s.metrics.MatchScored()

	if s.recomputer == nil {
		return result, nil
	}
	recompute, err := s.recomputer.RecomputeTournament(ctx, result.TournamentID)
	if err != nil {
		return result, errors.Wrapf(err, "recompute tournament=%s after match=%s", result.TournamentID, matchID)
	}
	result.Recompute = &recompute

	s.logger.InfoContext(ctx, "match points recorded",
		"match_id", matchID,
		"tournament_id", result.TournamentID,
		"player1_points", result.Player1.Points,
		"player2_points", result.Player2.Points,
		"teams_recomputed", recompute.TeamsRecomputed,
	)
	return result, nil
}

// IngestMatchCompletion stores the final facts of a match and scores it.
// A completed match cannot be re-reported with a different result.
func (s *MatchPointsService) IngestMatchCompletion(ctx context.Context, ev MatchCompletedEvent) (MatchPointsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchPointsService.IngestMatchCompletion", attribute.String("match_id", ev.MatchID))
	defer span.End()

	incoming := match.Match{
		ID:           strings.TrimSpace(ev.MatchID),
		TournamentID: strings.TrimSpace(ev.TournamentID),
		Player1ID:    strings.TrimSpace(ev.Player1ID),
		Player2ID:    strings.TrimSpace(ev.Player2ID),
		Player1Score: ev.Player1Score,
		Player2Score: ev.Player2Score,
		Round:        strings.TrimSpace(ev.Round),
		Status:       match.StatusCompleted,
	}
	if err := incoming.Validate(); err != nil {
		return MatchPointsResult{}, errors.Mark(err, ErrInvalidInput)
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, exists, err := s.tournamentRepo.GetByID(ctx, incoming.TournamentID); err != nil {
			return errors.Wrap(err, "get tournament")
		} else if !exists {
			return notFound("tournament=%s", incoming.TournamentID)
		}

		now := s.now().UTC()
		incoming.CreatedAt = now
		incoming.UpdatedAt = now
		incoming.CompletedAt = &now

		existing, exists, err := s.matchRepo.GetByID(ctx, incoming.ID)
		if err != nil {
			return errors.Wrap(err, "get match")
		}
		if exists {
			if existing.TournamentID != incoming.TournamentID {
				return invalidInput("match=%s belongs to tournament=%s", existing.ID, existing.TournamentID)
			}
			if existing.IsCompleted() {
				if !existing.SameResult(incoming) {
					return invalidState(ErrInvalidState, "match=%s is already completed with a different result", existing.ID)
				}
				incoming.CompletedAt = existing.CompletedAt
			}
			incoming.CreatedAt = existing.CreatedAt
		}

		if err := s.matchRepo.Upsert(ctx, incoming); err != nil {
			return errors.Wrap(err, "save match")
		}
		return nil
	})
	if err != nil {
		return MatchPointsResult{}, err
	}

	return s.RecordMatchPoints(ctx, incoming.ID)
}

func (s *MatchPointsService) ListMatchPoints(ctx context.Context, matchID string) ([]points.PlayerMatchPoints, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, invalidInput("match id is required")
	}
	if _, exists, err := s.matchRepo.GetByID(ctx, matchID); err != nil {
		return nil, errors.Wrap(err, "get match")
	} else if !exists {
		return nil, notFound("match=%s", matchID)
	}

	rows, err := s.pointsRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, errors.Wrap(err, "list player match points")
	}
	return rows, nil
}
