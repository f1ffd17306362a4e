package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
	"go.opentelemetry.io/otel/attribute"
)

// PlayerContribution is one roster player's share of a team total.
type PlayerContribution struct {
	PlayerID     string
	Role         string
	RawPoints    float64
	Multiplier   float64
	Contribution float64
}

type TeamTotal struct {
	TeamID       string
	ContestID    string
	TournamentID string
	TotalPoints  float64
	Players      []PlayerContribution
}

type TeamAggregatorService struct {
	contestRepo contest.Repository
	teamRepo    contest.TeamRepository
	pointsRepo  points.Repository
	tx          Transactor
}

func NewTeamAggregatorService(
	contestRepo contest.Repository,
	teamRepo contest.TeamRepository,
	pointsRepo points.Repository,
	tx Transactor,
) *TeamAggregatorService {
	return &TeamAggregatorService{
		contestRepo: contestRepo,
		teamRepo:    teamRepo,
		pointsRepo:  pointsRepo,
		tx:          orPassthrough(tx),
	}
}

// RecomputeTeamTotal replaces the team's total with the weighted sum of every
// roster player's points across the whole tournament.
func (s *TeamAggregatorService) RecomputeTeamTotal(ctx context.Context, teamID string) (TeamTotal, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamAggregatorService.RecomputeTeamTotal", attribute.String("team_id", teamID))
	defer span.End()

	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return TeamTotal{}, invalidInput("team id is required")
	}

	var out TeamTotal
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		team, exists, err := s.teamRepo.GetByID(ctx, teamID)
		if err != nil {
			return errors.Wrap(err, "get team")
		}
		if !exists {
			return notFound("team=%s", teamID)
		}

		c, exists, err := s.contestRepo.GetByID(ctx, team.ContestID)
		if err != nil {
			return errors.Wrap(err, "get contest")
		}
		if !exists {
			return notFound("contest=%s", team.ContestID)
		}

		sums, err := s.pointsRepo.SumByTournament(ctx, c.TournamentID, team.PlayerIDs())
		if err != nil {
			return errors.Wrap(err, "sum player points")
		}

		out = aggregateTeam(team, sums)
		out.TournamentID = c.TournamentID
		if err := s.teamRepo.UpdateTotalPoints(ctx, team.ID, out.TotalPoints); err != nil {
			return errors.Wrap(err, "update team total")
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		return TeamTotal{}, err
	}
	return out, nil
}

func aggregateTeam(team contest.Team, sums map[string]float64) TeamTotal {
	out := TeamTotal{
		TeamID:    team.ID,
		ContestID: team.ContestID,
		Players:   make([]PlayerContribution, 0, len(team.Roster)),
	}
	for _, member := range team.Roster {
		raw := sums[member.PlayerID]
		mult := member.Multiplier()
		contribution := raw * mult
		out.TotalPoints += contribution
		out.Players = append(out.Players, PlayerContribution{
			PlayerID:     member.PlayerID,
			Role:         member.Role(),
			RawPoints:    raw,
			Multiplier:   mult,
			Contribution: contribution,
		})
	}
	return out
}
