package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/pickleball-fantasy/internal/config"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/match"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/payment"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/points"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/riskibarqy/pickleball-fantasy/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/pickleball-fantasy/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/riskibarqy/pickleball-fantasy/internal/usecase"
)

const dbPingTimeout = 5 * time.Second

// Storage bundles the repositories of one backend with its transaction runner.
type Storage struct {
	Driver        string
	Tournaments   tournament.Repository
	Matches       match.Repository
	Points        points.Repository
	Contests      contest.Repository
	Teams         contest.TeamRepository
	PrizeRules    prize.RuleRepository
	Disbursements prize.DisbursementRepository
	Payments      payment.Repository
	Tx            usecase.Transactor

	close func() error
}

func (s *Storage) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage connects the backend selected by cfg.StorageDriver. The memory
// backend is seeded with the demo tournament.
func OpenStorage(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StorageMemory, "":
		return openMemory(logger), nil
	default:
		return nil, errors.Newf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func openMemory(logger *logging.Logger) *Storage {
	store := memory.NewStore()
	memory.SeedDemo(store)
	logger.Info("storage ready", "driver", config.StorageMemory, "seed_tournament", memory.TournamentIDJakartaOpen)

	return &Storage{
		Driver:        config.StorageMemory,
		Tournaments:   store.Tournaments(),
		Matches:       store.Matches(),
		Points:        store.Points(),
		Contests:      store.Contests(),
		Teams:         store.Teams(),
		PrizeRules:    store.PrizeRules(),
		Disbursements: store.Disbursements(),
		Payments:      store.Payments(),
		Tx:            store,
	}
}

func openPostgres(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Storage, error) {
	dsn := ParsePostgresDSN(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Open("postgres", dsn.URL,
		otelsql.WithDBName(dsn.DBName),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	logger.Info("storage ready", "driver", config.StoragePostgres, "db", dsn.DBName)

	return newPostgresStorage(db), nil
}

func newPostgresStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Driver:        config.StoragePostgres,
		Tournaments:   postgres.NewTournamentRepository(db),
		Matches:       postgres.NewMatchRepository(db),
		Points:        postgres.NewPointsRepository(db),
		Contests:      postgres.NewContestRepository(db),
		Teams:         postgres.NewTeamRepository(db),
		PrizeRules:    postgres.NewPrizeRuleRepository(db),
		Disbursements: postgres.NewDisbursementRepository(db),
		Payments:      postgres.NewPaymentRepository(db),
		Tx:            postgres.NewTxManager(db),
		close:         db.Close,
	}
}
