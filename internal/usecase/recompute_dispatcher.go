package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/platform/logging"
	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const defaultRecomputeWorkers = 8

type TeamRecomputer interface {
	RecomputeTeamTotal(ctx context.Context, teamID string) (TeamTotal, error)
}

type ContestRanker interface {
	RecomputeRankings(ctx context.Context, contestID string) ([]contest.Standing, error)
}

type ContestRanking struct {
	ContestID string
	Standings []contest.Standing
}

type TournamentRecompute struct {
	TournamentID    string
	TeamsRecomputed int
	Contests        []ContestRanking
}

// RecomputeDispatcher fans a tournament's recompute out in two phases: every
// team total first, then every contest ranking once all totals are written.
type RecomputeDispatcher struct {
	contestRepo contest.Repository
	teamRepo    contest.TeamRepository
	teams       TeamRecomputer
	ranker      ContestRanker
	maxWorkers  int
	metrics     Metrics
	logger      *logging.Logger

	mu     sync.Mutex
	queues map[string]*recomputeQueue
}

// recomputeQueue holds the run in progress for one tournament and at most one
// run waiting behind it.
type recomputeQueue struct {
	running *recomputeRun
	next    *recomputeRun
}

type recomputeRun struct {
	ctx  context.Context
	done chan struct{}
	out  TournamentRecompute
	err  error
}

func newRecomputeRun(ctx context.Context) *recomputeRun {
	return &recomputeRun{ctx: context.WithoutCancel(ctx), done: make(chan struct{})}
}

func NewRecomputeDispatcher(
	contestRepo contest.Repository,
	teamRepo contest.TeamRepository,
	teams TeamRecomputer,
	ranker ContestRanker,
	maxWorkers int,
	metrics Metrics,
	logger *logging.Logger,
) *RecomputeDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = defaultRecomputeWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RecomputeDispatcher{
		contestRepo: contestRepo,
		teamRepo:    teamRepo,
		teams:       teams,
		ranker:      ranker,
		maxWorkers:  maxWorkers,
		metrics:     orNopMetrics(metrics),
		logger:      logger,
	}
}

// RecomputeTournament reads only data committed before the call. A caller
// arriving while a run is in progress waits for a fresh run queued behind it;
// every caller arriving during the same run shares that queued run. Runs ignore
// caller cancellation; a cancelled caller only stops waiting.
func (d *RecomputeDispatcher) RecomputeTournament(ctx context.Context, tournamentID string) (TournamentRecompute, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	if tournamentID == "" {
		return TournamentRecompute{}, invalidInput("tournament id is required")
	}

	run := d.enqueue(ctx, tournamentID)
	select {
	case <-run.done:
		return run.out, run.err
	case <-ctx.Done():
		return TournamentRecompute{}, errors.Wrapf(ctx.Err(), "wait recompute tournament=%s", tournamentID)
	}
}

func (d *RecomputeDispatcher) enqueue(ctx context.Context, tournamentID string) *recomputeRun {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.queues == nil {
		d.queues = make(map[string]*recomputeQueue)
	}
	q, ok := d.queues[tournamentID]
	if !ok {
		q = &recomputeQueue{running: newRecomputeRun(ctx)}
		d.queues[tournamentID] = q
		go d.drain(tournamentID, q)
		return q.running
	}
	if q.next == nil {
		q.next = newRecomputeRun(ctx)
	}
	return q.next
}

// drain executes queued runs for one tournament until none is left.
func (d *RecomputeDispatcher) drain(tournamentID string, q *recomputeQueue) {
	for {
		d.mu.Lock()
		run := q.running
		d.mu.Unlock()

		if rec := panics.Try(func() {
			run.out, run.err = d.recompute(run.ctx, tournamentID)
		}); rec != nil {
			run.out, run.err = TournamentRecompute{}, errors.Wrapf(rec.AsError(), "recompute tournament=%s", tournamentID)
		}
		close(run.done)

		d.mu.Lock()
		if q.next == nil {
			delete(d.queues, tournamentID)
			d.mu.Unlock()
			return
		}
		q.running, q.next = q.next, nil
		d.mu.Unlock()
	}
}

func (d *RecomputeDispatcher) recompute(ctx context.Context, tournamentID string) (TournamentRecompute, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeDispatcher.RecomputeTournament", attribute.String("tournament_id", tournamentID))
	defer span.End()

	contests, err := d.contestRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return TournamentRecompute{}, errors.Wrap(err, "list tournament contests")
	}

	var teamIDs []string
	for _, c := range contests {
		teams, err := d.teamRepo.ListByContest(ctx, c.ID)
		if err != nil {
			return TournamentRecompute{}, errors.Wrapf(err, "list teams contest=%s", c.ID)
		}
		for _, t := range teams {
			teamIDs = append(teamIDs, t.ID)
		}
	}

	recomputed, err := d.recomputeTeams(ctx, teamIDs)
	if err != nil {
		recordSpanError(span, err)
		return TournamentRecompute{}, err
	}
	d.metrics.TeamsRecomputed(recomputed)

	rankings, err := d.recomputeRankings(ctx, contests)
	if err != nil {
		recordSpanError(span, err)
		return TournamentRecompute{}, err
	}

	d.logger.InfoContext(ctx, "tournament recompute finished",
		"tournament_id", tournamentID,
		"contests", len(contests),
		"teams", recomputed,
	)
	return TournamentRecompute{
		TournamentID:    tournamentID,
		TeamsRecomputed: recomputed,
		Contests:        rankings,
	}, nil
}

func (d *RecomputeDispatcher) recomputeTeams(ctx context.Context, teamIDs []string) (int, error) {
	if len(teamIDs) == 0 {
		return 0, nil
	}

	workerCount := min(d.maxWorkers, len(teamIDs))
	p, err := ants.NewPool(workerCount)
	if err != nil {
		return 0, errors.Wrap(err, "create recompute worker pool")
	}
	defer p.Release()

	var (
		wg      sync.WaitGroup
		done    atomic.Int32
		errMu   sync.Mutex
		taskErr error
	)
	record := func(err error) {
		errMu.Lock()
		taskErr = errors.CombineErrors(taskErr, err)
		errMu.Unlock()
	}

	for _, teamID := range teamIDs {
		wg.Add(1)
		if err := p.Submit(func() {
			defer wg.Done()
			if _, err := d.teams.RecomputeTeamTotal(ctx, teamID); err != nil {
				record(errors.Wrapf(err, "recompute team=%s", teamID))
				return
			}
			done.Add(1)
		}); err != nil {
			wg.Done()
			record(errors.Wrapf(err, "submit team=%s", teamID))
		}
	}
	wg.Wait()

	if taskErr != nil {
		d.logger.WarnContext(ctx, "team recompute incomplete, rankings skipped",
			"teams", len(teamIDs),
			"succeeded", done.Load(),
			"error", taskErr,
		)
		return int(done.Load()), taskErr
	}
	return int(done.Load()), nil
}

func (d *RecomputeDispatcher) recomputeRankings(ctx context.Context, contests []contest.Contest) ([]ContestRanking, error) {
	if len(contests) == 0 {
		return nil, nil
	}

	p := pool.NewWithResults[ContestRanking]().
		WithContext(ctx).
		WithMaxGoroutines(min(d.maxWorkers, len(contests)))
	for _, c := range contests {
		p.Go(func(ctx context.Context) (ContestRanking, error) {
			standings, err := d.ranker.RecomputeRankings(ctx, c.ID)
			if err != nil {
				return ContestRanking{}, errors.Wrapf(err, "recompute rankings contest=%s", c.ID)
			}
			return ContestRanking{ContestID: c.ID, Standings: standings}, nil
		})
	}

	out, err := p.Wait()
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContestID < out[j].ContestID })
	return out, nil
}
