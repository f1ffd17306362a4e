package eventbus

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

const (
	TopicMatchCompleted  = "pickleball.match.completed.v1"
	TopicPaymentCaptured = "pickleball.payment.captured.v1"
	TopicPoison          = "pickleball.events.poison.v1"
)

// MatchIngestor consumes match-completed events.
type MatchIngestor interface {
	IngestMatchCompletion(ctx context.Context, ev usecase.MatchCompletedEvent) (usecase.MatchPointsResult, error)
}

// PaymentCapturer consumes payment-captured events.
type PaymentCapturer interface {
	CapturePayment(ctx context.Context, ev usecase.PaymentCapturedEvent) (usecase.PoolUpdate, error)
}

type Config struct {
	Logger *logging.Logger
	// Registry enables router metrics when set.
	Registry      prometheus.Registerer
	MaxRetries    int
	RetryInterval time.Duration
	BufferSize    int64
}

// Bus is an in-process pub/sub backed by a watermill router.
// Publishing before Run has started delivers to no one, callers wait on Running.
type Bus struct {
	pubsub   *gochannel.GoChannel
	router   *message.Router
	validate *validator.Validate
	logger   *logging.Logger
}

func New(cfg Config, matches MatchIngestor, payments PaymentCapturer) (*Bus, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 100 * time.Millisecond
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64
	}

	logger := cfg.Logger.Named("eventbus")
	wmLogger := logging.NewWatermillAdapter(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: cfg.BufferSize}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, wmLogger)
	if err != nil {
		return nil, errors.Wrap(err, "create event router")
	}

	if cfg.Registry != nil {
		metrics.NewPrometheusMetricsBuilder(cfg.Registry, "pickleball_fantasy", "events").AddPrometheusRouterMetrics(router)
	}

	poison, err := middleware.PoisonQueue(pubsub, TopicPoison)
	if err != nil {
		return nil, errors.Wrap(err, "create poison queue middleware")
	}

	router.AddMiddleware(
		middleware.CorrelationID,
		poison,
		middleware.Retry{
			MaxRetries:      cfg.MaxRetries,
			InitialInterval: cfg.RetryInterval,
			MaxInterval:     10 * cfg.RetryInterval,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
		middleware.Recoverer,
	)

	b := &Bus{
		pubsub:   pubsub,
		router:   router,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}

	handlers := map[string]message.HandlerFunc{
		TopicMatchCompleted:  b.handleMatchCompleted(matches),
		TopicPaymentCaptured: b.handlePaymentCaptured(payments),
		TopicPoison:          b.handlePoisoned,
	}
	for topic, handlerFunc := range handlers {
		router.AddHandler("pickleball."+topic, topic, pubsub, "", nil, handlerFunc)
	}

	return b, nil
}

// Run blocks until ctx is cancelled or the router is closed.
func (b *Bus) Run(ctx context.Context) error {
	return b.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (b *Bus) Running() chan struct{} {
	return b.router.Running()
}

func (b *Bus) Close() error {
	routerErr := b.router.Close()
	return errors.CombineErrors(routerErr, b.pubsub.Close())
}

// Subscribe attaches an extra raw subscriber to topic.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

func (b *Bus) PublishMatchCompleted(ctx context.Context, ev usecase.MatchCompletedEvent) error {
	return b.publish(ctx, TopicMatchCompleted, ev.MatchID, ev)
}

func (b *Bus) PublishPaymentCaptured(ctx context.Context, ev usecase.PaymentCapturedEvent) error {
	return b.publish(ctx, TopicPaymentCaptured, ev.PaymentID, ev)
}

func (b *Bus) publish(ctx context.Context, topic, correlationID string, payload any) error {
	if err := b.validate.StructCtx(ctx, payload); err != nil {
		return errors.Mark(errors.Wrapf(err, "invalid %s payload", topic), usecase.ErrInvalidInput)
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return errors.Wrapf(err, "encode %s payload", topic)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	middleware.SetCorrelationID(correlationID, msg)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return errors.Wrapf(err, "publish %s", topic)
	}

	b.logger.DebugContext(ctx, "event published", "topic", topic, "message_id", msg.UUID, "correlation_id", correlationID)
	return nil
}

func (b *Bus) handleMatchCompleted(svc MatchIngestor) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		var ev usecase.MatchCompletedEvent
		if err := b.decode(msg, &ev); err != nil {
			return nil, b.settle(msg, err)
		}

		result, err := svc.IngestMatchCompletion(msg.Context(), ev)
		if err != nil {
			return nil, b.settle(msg, err)
		}

		b.logger.InfoContext(msg.Context(), "match completion consumed",
			"match_id", result.MatchID,
			"tournament_id", result.TournamentID,
			"correlation_id", middleware.MessageCorrelationID(msg),
		)
		return nil, nil
	}
}

func (b *Bus) handlePaymentCaptured(svc PaymentCapturer) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		var ev usecase.PaymentCapturedEvent
		if err := b.decode(msg, &ev); err != nil {
			return nil, b.settle(msg, err)
		}

		update, err := svc.CapturePayment(msg.Context(), ev)
		if err != nil {
			return nil, b.settle(msg, err)
		}

		b.logger.InfoContext(msg.Context(), "payment capture consumed",
			"contest_id", update.ContestID,
			"duplicate", update.Duplicate,
			"entrants", update.Entrants,
			"correlation_id", middleware.MessageCorrelationID(msg),
		)
		return nil, nil
	}
}

func (b *Bus) handlePoisoned(msg *message.Message) ([]*message.Message, error) {
	b.logger.ErrorContext(msg.Context(), "event dropped after retries",
		"message_id", msg.UUID,
		"topic", msg.Metadata.Get(middleware.PoisonedTopicKey),
		"reason", msg.Metadata.Get(middleware.ReasonForPoisonedKey),
		"correlation_id", middleware.MessageCorrelationID(msg),
	)
	return nil, nil
}

func (b *Bus) decode(msg *message.Message, out any) error {
	if err := sonic.Unmarshal(msg.Payload, out); err != nil {
		return errors.Mark(errors.Wrap(err, "decode event payload"), usecase.ErrInvalidInput)
	}
	if err := b.validate.Struct(out); err != nil {
		return errors.Mark(errors.Wrap(err, "validate event payload"), usecase.ErrInvalidInput)
	}
	return nil
}

// settle acknowledges events that can never succeed and hands the rest to the retry middleware.
func (b *Bus) settle(msg *message.Message, err error) error {
	if isPermanent(err) {
		b.logger.WarnContext(msg.Context(), "event rejected",
			"message_id", msg.UUID,
			"correlation_id", middleware.MessageCorrelationID(msg),
			"error", err,
		)
		return nil
	}
	return err
}

func isPermanent(err error) bool {
	return errors.Is(err, usecase.ErrInvalidInput) ||
		errors.Is(err, usecase.ErrNotFound) ||
		errors.Is(err, usecase.ErrInvalidState)
}
