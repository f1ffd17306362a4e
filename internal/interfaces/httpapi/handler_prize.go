package httpapi

import (
	"net/http"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

func (h *Handler) GetPrizeRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetPrizeRules")
	defer span.End()

	contestID := r.PathValue("contestID")
	resolved, err := h.prizeRuleService.ResolveRules(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve prize rules failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resolvedRulesToDTO(resolved))
}

func (h *Handler) ReplaceContestPrizeRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ReplaceContestPrizeRules")
	defer span.End()

	contestID := r.PathValue("contestID")
	var req replacePrizeRulesRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rules, err := h.prizeRuleService.ReplaceContestRules(ctx, contestID, rulesFromRequest(req.Rules))
	if err != nil {
		h.logger.WarnContext(ctx, "replace contest prize rules failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ruleSetDTO{Scope: "contest:" + contestID, Rules: rulesToDTO(rules)})
}

func (h *Handler) ReplaceTournamentPrizeRules(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ReplaceTournamentPrizeRules")
	defer span.End()

	tournamentID := r.PathValue("tournamentID")
	var req replacePrizeRulesRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	rules, err := h.prizeRuleService.ReplaceTournamentRules(ctx, tournamentID, rulesFromRequest(req.Rules))
	if err != nil {
		h.logger.WarnContext(ctx, "replace tournament prize rules failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ruleSetDTO{Scope: "tournament:" + tournamentID, Rules: rulesToDTO(rules)})
}

func (h *Handler) DistributePrizes(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "DistributePrizes")
	defer span.End()

	contestID := r.PathValue("contestID")
	result, err := h.distributionService.DistributePrizes(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "distribute prizes failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, distributionToDTO(result))
}

func (h *Handler) ListDisbursements(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListDisbursements")
	defer span.End()

	contestID := r.PathValue("contestID")
	rows, err := h.distributionService.ListDisbursements(ctx, contestID)
	if err != nil {
		h.logger.WarnContext(ctx, "list disbursements failed", "contest_id", contestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, disbursementsToDTO(rows))
}

func (h *Handler) PayoutCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "PayoutCallback")
	defer span.End()

	var req payoutCallbackRequest
	if err := h.decodeRequest(r.WithContext(ctx), &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.distributionService.ApplyPayoutUpdate(ctx, usecase.PayoutUpdate{
		DisbursementID: req.DisbursementID,
		Status:         prize.DisbursementStatus(req.Status),
		TransactionRef: req.TransactionRef,
		Reason:         req.Reason,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "apply payout update failed", "disbursement_id", req.DisbursementID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, disbursementToDTO(updated))
}
