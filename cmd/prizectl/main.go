// Command prizectl runs scoring and prize operations directly against the
// configured storage, bypassing the HTTP API.
//
// Usage:
//
//	prizectl record-match <matchID>
//	prizectl recompute-tournament <tournamentID>
//	prizectl recompute-rankings <contestID>
//	prizectl resolve-rules <contestID>
//	prizectl distribute <contestID>
//	prizectl disbursements <contestID>
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	sonic "github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/riskibarqy/pickleball-fantasy/internal/app"
	"github.com/riskibarqy/pickleball-fantasy/internal/config"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
)

// servicesOpener returns the wired use cases and a release func.
type servicesOpener func(ctx context.Context) (*app.Services, func() error, error)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd(openFromEnv)
	if err := root.ExecuteContext(ctx); err != nil {
		root.PrintErrln("error:", err)
		stop()
		os.Exit(1)
	}
}

func openFromEnv(ctx context.Context) (*app.Services, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	logger := logging.NewJSONWriter(os.Stderr, cfg.LogLevel).Named("prizectl")

	storage, err := app.OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	services, err := app.NewServices(cfg, storage, nil, logger)
	if err != nil {
		_ = storage.Close()
		return nil, nil, err
	}
	return services, storage.Close, nil
}

func newRootCmd(open servicesOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "prizectl",
		Short:         "Pickleball fantasy scoring and prize administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serviceCmd(open, "record-match <matchID>", "Score a completed match and recompute affected teams",
			func(ctx context.Context, s *app.Services, id string) (any, error) {
				return s.MatchPoints.RecordMatchPoints(ctx, id)
			}),
		serviceCmd(open, "recompute-tournament <tournamentID>", "Recompute every team total and ranking of a tournament",
			func(ctx context.Context, s *app.Services, id string) (any, error) {
				return s.Recompute.RecomputeTournament(ctx, id)
			}),
		serviceCmd(open, "recompute-rankings <contestID>", "Recompute the ranking of one contest",
			func(ctx context.Context, s *app.Services, id string) (any, error) {
				return s.Ranking.RecomputeRankings(ctx, id)
			}),
		serviceCmd(open, "resolve-rules <contestID>", "Show the prize rules that apply to a contest",
			func(ctx context.Context, s *app.Services, id string) (any, error) {
				return s.PrizeRules.ResolveRules(ctx, id)
			}),
		serviceCmd(open, "distribute <contestID>", "Distribute the prize pool of a contest",
			func(ctx context.Context, s *app.Services, id string) (any, error) {
				return s.Distribution.DistributePrizes(ctx, id)
			}),
		serviceCmd(open, "disbursements <contestID>", "List the disbursements of a contest",
			func(ctx context.Context, s *app.Services, id string) (any, error) {
				return s.Distribution.ListDisbursements(ctx, id)
			}),
	)
	return root
}

func serviceCmd(open servicesOpener, use, short string, run func(ctx context.Context, s *app.Services, id string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = release() }()

			out, err := run(cmd.Context(), services, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode output")
	}
	_, err = w.Write(append(raw, '\n'))
	return err
}
