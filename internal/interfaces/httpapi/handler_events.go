package httpapi

import (
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

const (
	topicMatchCompleted  = "match-completed"
	topicPaymentCaptured = "payment-captured"
)

func (h *Handler) PublishMatchCompleted(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "PublishMatchCompleted")
	defer span.End()

	if h.events == nil {
		writeError(ctx, w, errors.Wrap(usecase.ErrDependencyUnavailable, "event bus is not configured"))
		return
	}

	var ev usecase.MatchCompletedEvent
	if err := h.decodeRequest(r.WithContext(ctx), &ev); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.events.PublishMatchCompleted(ctx, ev); err != nil {
		h.logger.ErrorContext(ctx, "publish match completed failed", "match_id", ev.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, eventAcceptedDTO{Topic: topicMatchCompleted, CorrelationID: ev.MatchID})
}

func (h *Handler) PublishPaymentCaptured(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "PublishPaymentCaptured")
	defer span.End()

	if h.events == nil {
		writeError(ctx, w, errors.Wrap(usecase.ErrDependencyUnavailable, "event bus is not configured"))
		return
	}

	var ev usecase.PaymentCapturedEvent
	if err := h.decodeRequest(r.WithContext(ctx), &ev); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.events.PublishPaymentCaptured(ctx, ev); err != nil {
		h.logger.ErrorContext(ctx, "publish payment captured failed", "payment_id", ev.PaymentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, eventAcceptedDTO{Topic: topicPaymentCaptured, CorrelationID: ev.PaymentID})
}
