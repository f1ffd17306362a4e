package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

type prizeRuleRecord struct {
	Rank       int             `json:"rank" validate:"gte=1"`
	Percentage decimal.Decimal `json:"percentage"`
	MinPlayers int             `json:"minPlayers" validate:"gte=1"`
}

type replacePrizeRulesRequest struct {
	Rules []prizeRuleRecord `json:"rules" validate:"required,min=1,dive"`
}

type payoutCallbackRequest struct {
	DisbursementID string `json:"disbursementId" validate:"required"`
	Status         string `json:"status" validate:"required,oneof=PENDING PROCESSING PAID FAILED"`
	TransactionRef string `json:"transactionRef"`
	Reason         string `json:"reason"`
}

type eventAcceptedDTO struct {
	Topic         string `json:"topic"`
	CorrelationID string `json:"correlationId"`
}

type playerPointsDTO struct {
	PlayerID     string           `json:"playerId"`
	MatchID      string           `json:"matchId"`
	TournamentID string           `json:"tournamentId,omitempty"`
	Points       float64          `json:"points"`
	Breakdown    points.Breakdown `json:"breakdown"`
	UpdatedAt    string           `json:"updatedAt,omitempty"`
}

type standingDTO struct {
	Rank        int     `json:"rank"`
	TeamID      string  `json:"teamId"`
	UserID      string  `json:"userId"`
	TotalPoints float64 `json:"totalPoints"`
}

type contestRankingDTO struct {
	ContestID string        `json:"contestId"`
	Standings []standingDTO `json:"standings"`
}

type tournamentRecomputeDTO struct {
	TournamentID    string              `json:"tournamentId"`
	TeamsRecomputed int                 `json:"teamsRecomputed"`
	Contests        []contestRankingDTO `json:"contests"`
}

type matchPointsDTO struct {
	MatchID      string                  `json:"matchId"`
	TournamentID string                  `json:"tournamentId"`
	Players      []playerPointsDTO       `json:"players"`
	Recompute    *tournamentRecomputeDTO `json:"recompute,omitempty"`
}

type playerContributionDTO struct {
	PlayerID     string  `json:"playerId"`
	Role         string  `json:"role"`
	RawPoints    float64 `json:"rawPoints"`
	Multiplier   float64 `json:"multiplier"`
	Contribution float64 `json:"contribution"`
}

type teamTotalDTO struct {
	TeamID       string                  `json:"teamId"`
	ContestID    string                  `json:"contestId"`
	TournamentID string                  `json:"tournamentId"`
	TotalPoints  float64                 `json:"totalPoints"`
	Players      []playerContributionDTO `json:"players"`
}

type prizeRuleDTO struct {
	Rank       int    `json:"rank"`
	Percentage string `json:"percentage"`
	MinPlayers int    `json:"minPlayers"`
}

type resolvedRulesDTO struct {
	ContestID     string         `json:"contestId"`
	Source        string         `json:"source"`
	TeamCount     int            `json:"teamCount"`
	PaidPositions int            `json:"paidPositions"`
	Rules         []prizeRuleDTO `json:"rules"`
}

type ruleSetDTO struct {
	Scope string         `json:"scope"`
	Rules []prizeRuleDTO `json:"rules"`
}

type disbursementDTO struct {
	ID             string `json:"id"`
	ContestID      string `json:"contestId"`
	TeamID         string `json:"teamId"`
	UserID         string `json:"userId"`
	Rank           int    `json:"rank"`
	Percentage     string `json:"percentage"`
	Amount         string `json:"amount"`
	ProcessingFee  string `json:"processingFee"`
	NetAmount      string `json:"netAmount"`
	Status         string `json:"status"`
	TransactionRef string `json:"transactionRef,omitempty"`
	FailureReason  string `json:"failureReason,omitempty"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type distributionDTO struct {
	ContestID     string            `json:"contestId"`
	Success       bool              `json:"success"`
	PrizePool     string            `json:"prizePool"`
	RuleSource    string            `json:"ruleSource"`
	FailedPayouts int               `json:"failedPayouts"`
	Disbursements []disbursementDTO `json:"disbursements"`
}

func rulesFromRequest(records []prizeRuleRecord) []prize.Rule {
	out := make([]prize.Rule, 0, len(records))
	for _, r := range records {
		out = append(out, prize.Rule{Rank: r.Rank, Percentage: r.Percentage, MinPlayers: r.MinPlayers})
	}
	return out
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func storedPointsToDTO(v points.PlayerMatchPoints) playerPointsDTO {
	return playerPointsDTO{
		PlayerID:     v.PlayerID,
		MatchID:      v.MatchID,
		TournamentID: v.TournamentID,
		Points:       v.Points,
		Breakdown:    v.Breakdown,
		UpdatedAt:    formatTime(v.UpdatedAt),
	}
}

func standingsToDTO(items []contest.Standing) []standingDTO {
	out := make([]standingDTO, 0, len(items))
	for _, s := range items {
		out = append(out, standingDTO{
			Rank:        s.Rank,
			TeamID:      s.TeamID,
			UserID:      s.UserID,
			TotalPoints: s.TotalPoints,
		})
	}
	return out
}

func recomputeToDTO(v usecase.TournamentRecompute) tournamentRecomputeDTO {
	contests := make([]contestRankingDTO, 0, len(v.Contests))
	for _, c := range v.Contests {
		contests = append(contests, contestRankingDTO{ContestID: c.ContestID, Standings: standingsToDTO(c.Standings)})
	}
	return tournamentRecomputeDTO{
		TournamentID:    v.TournamentID,
		TeamsRecomputed: v.TeamsRecomputed,
		Contests:        contests,
	}
}

func matchPointsResultToDTO(v usecase.MatchPointsResult) matchPointsDTO {
	out := matchPointsDTO{
		MatchID:      v.MatchID,
		TournamentID: v.TournamentID,
	}
	for _, p := range []usecase.PlayerPoints{v.Player1, v.Player2} {
		out.Players = append(out.Players, playerPointsDTO{
			PlayerID:     p.PlayerID,
			MatchID:      v.MatchID,
			TournamentID: v.TournamentID,
			Points:       p.Points,
			Breakdown:    p.Breakdown,
		})
	}
	if v.Recompute != nil {
		recompute := recomputeToDTO(*v.Recompute)
		out.Recompute = &recompute
	}
	return out
}

func teamTotalToDTO(v usecase.TeamTotal) teamTotalDTO {
	players := make([]playerContributionDTO, 0, len(v.Players))
	for _, p := range v.Players {
		players = append(players, playerContributionDTO{
			PlayerID:     p.PlayerID,
			Role:         p.Role,
			RawPoints:    p.RawPoints,
			Multiplier:   p.Multiplier,
			Contribution: p.Contribution,
		})
	}
	return teamTotalDTO{
		TeamID:       v.TeamID,
		ContestID:    v.ContestID,
		TournamentID: v.TournamentID,
		TotalPoints:  v.TotalPoints,
		Players:      players,
	}
}

func rulesToDTO(rules prize.RuleSet) []prizeRuleDTO {
	out := make([]prizeRuleDTO, 0, len(rules))
	for _, r := range rules {
		out = append(out, prizeRuleDTO{
			Rank:       r.Rank,
			Percentage: r.Percentage.String(),
			MinPlayers: r.MinPlayers,
		})
	}
	return out
}

func resolvedRulesToDTO(v usecase.ResolvedRules) resolvedRulesDTO {
	return resolvedRulesDTO{
		ContestID:     v.ContestID,
		Source:        string(v.Source),
		TeamCount:     v.TeamCount,
		PaidPositions: v.PaidPositions,
		Rules:         rulesToDTO(v.Rules),
	}
}

func disbursementToDTO(v prize.Disbursement) disbursementDTO {
	return disbursementDTO{
		ID:             v.ID,
		ContestID:      v.ContestID,
		TeamID:         v.TeamID,
		UserID:         v.UserID,
		Rank:           v.Rank,
		Percentage:     v.Percentage.String(),
		Amount:         v.Amount.StringFixed(2),
		ProcessingFee:  v.ProcessingFee.StringFixed(2),
		NetAmount:      v.NetAmount.StringFixed(2),
		Status:         string(v.Status),
		TransactionRef: v.TransactionRef,
		FailureReason:  v.FailureReason,
		CreatedAt:      formatTime(v.CreatedAt),
		UpdatedAt:      formatTime(v.UpdatedAt),
	}
}

func disbursementsToDTO(items []prize.Disbursement) []disbursementDTO {
	out := make([]disbursementDTO, 0, len(items))
	for _, d := range items {
		out = append(out, disbursementToDTO(d))
	}
	return out
}

func distributionToDTO(v usecase.DistributionResult) distributionDTO {
	return distributionDTO{
		ContestID:     v.ContestID,
		Success:       v.Success,
		PrizePool:     v.PrizePool.StringFixed(2),
		RuleSource:    string(v.RuleSource),
		FailedPayouts: v.FailedPayouts,
		Disbursements: disbursementsToDTO(v.Disbursements),
	}
}
