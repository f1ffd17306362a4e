package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("PRIZE_PROCESSING_FEE_PERCENT", "")
	t.Setenv("PRIZE_PAYOUT_PERCENT", "")
	t.Setenv("RECOMPUTE_MAX_WORKERS", "")
	t.Setenv("PAYOUT_ENABLED", "")
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StorageDriver != StorageMemory {
		t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
	}
	if cfg.ProcessingFeePercent.String() != "2.36" {
		t.Fatalf("unexpected fee percent: %s", cfg.ProcessingFeePercent)
	}
	if cfg.PayoutPercent.String() != "77.64" {
		t.Fatalf("unexpected payout percent: %s", cfg.PayoutPercent)
	}
	if cfg.RecomputeMaxWorkers != 8 {
		t.Fatalf("unexpected recompute workers: %d", cfg.RecomputeMaxWorkers)
	}
	if cfg.PayoutEnabled {
		t.Fatalf("expected payout disabled by default")
	}
	if !cfg.PayoutCircuit.Enabled || cfg.PayoutCircuit.FailureThreshold != 5 || cfg.PayoutCircuit.OpenTimeout != 15*time.Second || cfg.PayoutCircuit.HalfOpenMaxReq != 2 {
		t.Fatalf("unexpected payout circuit defaults: %+v", cfg.PayoutCircuit)
	}
	if cfg.PayoutAccountCache != 5*time.Minute {
		t.Fatalf("unexpected payout account cache ttl: %s", cfg.PayoutAccountCache)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected metrics enabled by default")
	}
}

func TestLoad_PayoutAccountCacheTTL(t *testing.T) {
	t.Setenv("PAYOUT_ACCOUNT_CACHE_TTL", "0s")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.PayoutAccountCache != 0 {
		t.Fatalf("expected caching disabled, got %s", cfg.PayoutAccountCache)
	}

	t.Setenv("PAYOUT_ACCOUNT_CACHE_TTL", "-1m")
	if _, err := Load(); err == nil {
		t.Fatalf("expected negative ttl to be rejected")
	}
}

func TestLoad_StorageDriverValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("postgres accepted", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", " Postgres ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.StorageDriver != StoragePostgres {
			t.Fatalf("unexpected storage driver: %q", cfg.StorageDriver)
		}
	})

	t.Run("unknown rejected", func(t *testing.T) {
		t.Setenv("STORAGE_DRIVER", "mysql")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for unknown STORAGE_DRIVER")
		}
	})
}

func TestLoad_PercentValidation(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "fee not a number", key: "PRIZE_PROCESSING_FEE_PERCENT", value: "abc"},
		{name: "fee zero", key: "PRIZE_PROCESSING_FEE_PERCENT", value: "0"},
		{name: "payout hundred", key: "PRIZE_PAYOUT_PERCENT", value: "100"},
		{name: "payout negative", key: "PRIZE_PAYOUT_PERCENT", value: "-5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_PayoutConfigParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("enabled requires base url", func(t *testing.T) {
		t.Setenv("PAYOUT_ENABLED", "true")
		t.Setenv("PAYOUT_BASE_URL", "")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error when PAYOUT_ENABLED=true without PAYOUT_BASE_URL")
		}
	})

	t.Run("enabled with values", func(t *testing.T) {
		t.Setenv("PAYOUT_ENABLED", "true")
		t.Setenv("PAYOUT_BASE_URL", "https://payouts.example.com")
		t.Setenv("PAYOUT_TOKEN", "secret")
		t.Setenv("PAYOUT_TIMEOUT", "3s")
		t.Setenv("PAYOUT_RATE_PER_SECOND", "2.5")
		t.Setenv("PAYOUT_CIRCUIT_FAILURE_COUNT", "3")
		t.Setenv("PAYOUT_CIRCUIT_OPEN_TIMEOUT", "30s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if cfg.PayoutBaseURL != "https://payouts.example.com" || cfg.PayoutToken != "secret" {
			t.Fatalf("unexpected payout endpoint config: %+v", cfg)
		}
		if cfg.PayoutTimeout != 3*time.Second {
			t.Fatalf("unexpected payout timeout: %s", cfg.PayoutTimeout)
		}
		if cfg.PayoutRatePerSecond != 2.5 {
			t.Fatalf("unexpected payout rate: %v", cfg.PayoutRatePerSecond)
		}
		if cfg.PayoutCircuit.FailureThreshold != 3 || cfg.PayoutCircuit.OpenTimeout != 30*time.Second {
			t.Fatalf("unexpected payout circuit: %+v", cfg.PayoutCircuit)
		}
	})

	t.Run("invalid circuit failure count", func(t *testing.T) {
		t.Setenv("PAYOUT_ENABLED", "false")
		t.Setenv("PAYOUT_CIRCUIT_FAILURE_COUNT", "0")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for PAYOUT_CIRCUIT_FAILURE_COUNT=0")
		}
	})
}

func TestLoad_RecomputeWorkersMustBePositive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("RECOMPUTE_MAX_WORKERS", "0")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for RECOMPUTE_MAX_WORKERS=0")
	}
}

func TestLoad_ProdRequiresAdminToken(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("ADMIN_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when APP_ENV=prod without ADMIN_TOKEN")
	}

	t.Setenv("ADMIN_TOKEN", "admin-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AdminToken != "admin-secret" {
		t.Fatalf("unexpected admin token: %q", cfg.AdminToken)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "foo=bar, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected uptrace dsn: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "pickleball-fantasy-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "pickleball-fantasy-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_DBDisablePreparedBinaryResultParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default true", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if !cfg.DBDisablePreparedBinary {
			t.Fatalf("expected DBDisablePreparedBinary=true by default")
		}
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("DB_DISABLE_PREPARED_BINARY_RESULT", "not-bool")
		if _, err := Load(); err == nil {
			t.Fatalf("expected error for invalid DB_DISABLE_PREPARED_BINARY_RESULT")
		}
	})
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is ignored", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("expected missing env file to be ignored, got %v", err)
		}
	})

	t.Run("file values do not override environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		content := "PICKLEBALL_DOTENV_NEW=from-file\nPICKLEBALL_DOTENV_SET=from-file\n"
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write env file: %v", err)
		}
		t.Setenv("PICKLEBALL_DOTENV_SET", "from-env")
		t.Setenv("PICKLEBALL_DOTENV_NEW", "")
		os.Unsetenv("PICKLEBALL_DOTENV_NEW")

		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("load env file: %v", err)
		}
		if got := os.Getenv("PICKLEBALL_DOTENV_NEW"); got != "from-file" {
			t.Fatalf("unexpected PICKLEBALL_DOTENV_NEW: %q", got)
		}
		if got := os.Getenv("PICKLEBALL_DOTENV_SET"); got != "from-env" {
			t.Fatalf("unexpected PICKLEBALL_DOTENV_SET: %q", got)
		}
	})
}
