package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

// EventPublisher hands inbound webhook events to the asynchronous consumers.
type EventPublisher interface {
	PublishMatchCompleted(ctx context.Context, ev usecase.MatchCompletedEvent) error
	PublishPaymentCaptured(ctx context.Context, ev usecase.PaymentCapturedEvent) error
}

type Handler struct {
	matchPointsService  *usecase.MatchPointsService
	teamAggregator      *usecase.TeamAggregatorService
	rankingService      *usecase.RankingService
	recomputeDispatcher *usecase.RecomputeDispatcher
	prizeRuleService    *usecase.PrizeRuleService
	distributionService *usecase.PrizeDistributionService
	events              EventPublisher
	logger              *logging.Logger
	validator           *validator.Validate
}

func NewHandler(
	matchPointsService *usecase.MatchPointsService,
	teamAggregator *usecase.TeamAggregatorService,
	rankingService *usecase.RankingService,
	recomputeDispatcher *usecase.RecomputeDispatcher,
	prizeRuleService *usecase.PrizeRuleService,
	distributionService *usecase.PrizeDistributionService,
	events EventPublisher,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchPointsService:  matchPointsService,
		teamAggregator:      teamAggregator,
		rankingService:      rankingService,
		recomputeDispatcher: recomputeDispatcher,
		prizeRuleService:    prizeRuleService,
		distributionService: distributionService,
		events:              events,
		logger:              logger,
		validator:           validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return errors.Wrapf(usecase.ErrInvalidInput, "validation failed: %v", err)
	}

	return nil
}

// decodeRequest reads a strict JSON body into out and validates it.
func (h *Handler) decodeRequest(r *http.Request, out any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return errors.Wrapf(usecase.ErrInvalidInput, "invalid JSON payload: %v", err)
	}
	return h.validateRequest(r.Context(), out)
}
