package observability

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/grafana/pyroscope-go"
	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/riskibarqy/pickleball-fantasy/internal/config"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
)

// Runtime holds the process-wide telemetry exporters started from config.
type Runtime struct {
	tracing  bool
	profiler *pyroscope.Profiler
	logger   *logging.Logger
}

// Start configures Uptrace tracing and Pyroscope profiling. Either is skipped
// when disabled or missing its endpoint.
func Start(cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	rt := &Runtime{logger: logger}

	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing disabled", "reason", "UPTRACE_ENABLED=false")
	case strings.TrimSpace(cfg.UptraceDSN) == "":
		logger.Info("tracing disabled", "reason", "UPTRACE_DSN empty")
	default:
		uptrace.ConfigureOpentelemetry(
			uptrace.WithDSN(cfg.UptraceDSN),
			uptrace.WithServiceName(cfg.ServiceName),
			uptrace.WithServiceVersion(cfg.ServiceVersion),
			uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		)
		rt.tracing = true
		logger.Info("tracing enabled", "exporter", "uptrace", "service_version", cfg.ServiceVersion)
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("profiling disabled", "reason", "PYROSCOPE_ENABLED=false")
		return rt, nil
	}

	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"service": cfg.ServiceName,
			"storage": cfg.StorageDriver,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		return nil, errors.CombineErrors(errors.Wrap(err, "start pyroscope profiler"), rt.Shutdown(context.Background()))
	}
	rt.profiler = profiler
	logger.Info("profiling enabled", "server_address", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)

	return rt, nil
}

// Tracing reports whether spans are exported.
func (r *Runtime) Tracing() bool {
	return r != nil && r.tracing
}

// Shutdown flushes spans and stops the profiler. Safe to call more than once.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}

	var err error
	if r.profiler != nil {
		err = errors.CombineErrors(err, errors.Wrap(r.profiler.Stop(), "stop pyroscope"))
		r.profiler = nil
	}
	if r.tracing {
		err = errors.CombineErrors(err, errors.Wrap(uptrace.Shutdown(ctx), "shutdown uptrace"))
		r.tracing = false
	}
	return err
}
