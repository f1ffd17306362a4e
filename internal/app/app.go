package app

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/pickleball-fantasy/internal/config"
	"github.com/riskibarqy/pickleball-fantasy/internal/infrastructure/eventbus"
	"github.com/riskibarqy/pickleball-fantasy/internal/interfaces/httpapi"
	"github.com/riskibarqy/pickleball-fantasy/internal/observability"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

const eventRetryInterval = 200 * time.Millisecond

// App is the API process: HTTP server plus the in-process event router.
type App struct {
	Server  *http.Server
	Bus     *eventbus.Bus
	Storage *Storage
	logger  *logging.Logger
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, errors.New("http server addr cannot be empty")
	}

	storage, err := OpenStorage(ctx, cfg, logger.Named("storage"))
	if err != nil {
		return nil, err
	}

	var (
		metrics        usecase.Metrics
		registry       prometheus.Registerer
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		m := observability.NewMetrics()
		metrics = m
		registry = m.Registry()
		metricsHandler = m.Handler()
	}

	services, err := NewServices(cfg, storage, metrics, logger)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}

	bus, err := eventbus.New(eventbus.Config{
		Logger:        logger.Named("eventbus"),
		Registry:      registry,
		MaxRetries:    3,
		RetryInterval: eventRetryInterval,
	}, services.MatchPoints, services.PrizePool)
	if err != nil {
		_ = storage.Close()
		return nil, errors.Wrap(err, "build event bus")
	}

	handler := httpapi.NewHandler(
		services.MatchPoints,
		services.TeamAggregator,
		services.Ranking,
		services.Recompute,
		services.PrizeRules,
		services.Distribution,
		bus,
		logger.Named("http"),
	)
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		Logger:             logger.Named("http"),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AdminToken:         cfg.AdminToken,
		MetricsHandler:     metricsHandler,
	})

	return &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		Bus:     bus,
		Storage: storage,
		logger:  logger,
	}, nil
}

// Run serves HTTP and consumes events until ctx is cancelled or either side
// fails, then shuts both down.
func (a *App) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		if err := a.Bus.Run(ctx); err != nil {
			return errors.Wrap(err, "event router")
		}
		return nil
	})

	p.Go(func(ctx context.Context) error {
		a.logger.Info("http server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})

	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "graceful shutdown")
		}
		a.logger.Info("http server stopped")
		return nil
	})

	return p.Wait()
}

func (a *App) Close() error {
	return errors.CombineErrors(a.Bus.Close(), a.Storage.Close())
}
