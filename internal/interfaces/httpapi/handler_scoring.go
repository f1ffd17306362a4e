package httpapi

import (
	"net/http"
)

func (h *Handler) ListMatchPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListMatchPoints")
	defer span.End()

	matchID := r.PathValue("matchID")
	rows, err := h.matchPointsService.ListMatchPoints(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "list match points failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerPointsDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, storedPointsToDTO(row))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RecordMatchPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RecordMatchPoints")
	defer span.End()

	matchID := r.PathValue("matchID")
	result, err := h.matchPointsService.RecordMatchPoints(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "record match points failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchPointsResultToDTO(result))
}

func (h *Handler) RecomputeTeamTotal(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RecomputeTeamTotal")
	defer span.End()

	teamID := r.PathValue("teamID")
	total, err := h.teamAggregator.RecomputeTeamTotal(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute team total failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamTotalToDTO(total))
}

func (h *Handler) RecomputeTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RecomputeTournament")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	result, err := h.recomputeDispatcher.RecomputeTournament(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, recomputeToDTO(result))
}

func (h *Handler) ListRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListRankings")
	defer span.End()

	contestID := r.PathValue("contestID")
	standings, err := h.rankingService.ListRankings(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "list rankings failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(standings))
}

func (h *Handler) RecomputeRankings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RecomputeRankings")
	defer span.End()

	contestID := r.PathValue("contestID")
	standings, err := h.rankingService.RecomputeRankings(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "recompute rankings failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(standings))
}
