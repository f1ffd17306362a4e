package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/shopspring/decimal"
)

type ContestRepository struct {
	store *Store
}

func (r *ContestRepository) GetByID(_ context.Context, contestID string) (out contest.Contest, ok bool, _ error) {
	r.store.read(func(t *tables) {
		out, ok = t.contests[contestID]
	})
	return out, ok, nil
}

func (r *ContestRepository) ListByTournament(_ context.Context, tournamentID string) ([]contest.Contest, error) {
	var out []contest.Contest
	r.store.read(func(t *tables) {
		for _, c := range t.contests {
			if c.TournamentID == tournamentID {
				out = append(out, c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ContestRepository) Upsert(ctx context.Context, item contest.Contest) error {
	r.store.write(ctx, func(t *tables) {
		t.contests[item.ID] = item
	})
	return nil
}

func (r *ContestRepository) UpdatePrizePool(ctx context.Context, contestID string, pool decimal.Decimal) error {
	return r.mutate(ctx, contestID, func(c *contest.Contest) bool {
		c.PrizePool = pool
		return true
	}, nil)
}

func (r *ContestRepository) ClaimPrizeDistribution(ctx context.Context, contestID string) (bool, error) {
	var claimed bool
	err := r.mutate(ctx, contestID, func(c *contest.Contest) bool {
		if c.IsPrizesDistributed || c.IsPrizesProcessing {
			return false
		}
		c.IsPrizesProcessing = true
		return true
	}, &claimed)
	return claimed, err
}

func (r *ContestRepository) CompletePrizeDistribution(ctx context.Context, contestID string) error {
	return r.mutate(ctx, contestID, func(c *contest.Contest) bool {
		c.IsPrizesDistributed = true
		c.IsPrizesProcessing = false
		c.Status = contest.StatusCompleted
		return true
	}, nil)
}

// mutate applies fn under the write lock; changed reports whether fn accepted the update.
func (r *ContestRepository) mutate(ctx context.Context, contestID string, fn func(c *contest.Contest) bool, changed *bool) error {
	var err error
	r.store.write(ctx, func(t *tables) {
		c, ok := t.contests[contestID]
		if !ok {
			err = fmt.Errorf("contest %s not found", contestID)
			return
		}
		applied := fn(&c)
		if changed != nil {
			*changed = applied
		}
		if applied {
			c.UpdatedAt = time.Now().UTC()
			t.contests[contestID] = c
		}
	})
	return err
}

type TeamRepository struct {
	store *Store
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (out contest.Team, ok bool, _ error) {
	r.store.read(func(t *tables) {
		out, ok = t.teams[teamID]
	})
	return out, ok, nil
}

func (r *TeamRepository) ListByContest(_ context.Context, contestID string) ([]contest.Team, error) {
	var out []contest.Team
	r.store.read(func(t *tables) {
		for _, team := range t.teams {
			if team.ContestID == contestID {
				out = append(out, team)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *TeamRepository) Upsert(ctx context.Context, item contest.Team) error {
	item.Roster = append([]contest.RosterMember(nil), item.Roster...)
	r.store.write(ctx, func(t *tables) {
		t.teams[item.ID] = item
	})
	return nil
}

func (r *TeamRepository) UpdateTotalPoints(ctx context.Context, teamID string, total float64) error {
	var err error
	r.store.write(ctx, func(t *tables) {
		team, ok := t.teams[teamID]
		if !ok {
			err = fmt.Errorf("team %s not found", teamID)
			return
		}
		team.TotalPoints = total
		team.UpdatedAt = time.Now().UTC()
		t.teams[teamID] = team
	})
	return err
}

func (r *TeamRepository) UpdateRanks(ctx context.Context, contestID string, standings []contest.Standing) error {
	var err error
	r.store.write(ctx, func(t *tables) {
		now := time.Now().UTC()
		for _, s := range standings {
			team, ok := t.teams[s.TeamID]
			if !ok || team.ContestID != contestID {
				err = fmt.Errorf("team %s not in contest %s", s.TeamID, contestID)
				return
			}
			team.Rank = s.Rank
			team.UpdatedAt = now
			t.teams[s.TeamID] = team
		}
	})
	return err
}
