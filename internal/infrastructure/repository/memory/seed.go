package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/pickleball-fantasy/internal/domain/contest"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/prize"
	"github.com/riskibarqy/pickleball-fantasy/internal/domain/tournament"
	"github.com/shopspring/decimal"
)

const (
	TournamentIDJakartaOpen = "tour-jakarta-open-2026"
	ContestIDJakartaMain    = "contest-jakarta-main"
)

// SeedDemo loads a small tournament with one contest of six teams and a
// 70/30 default prize table. Used by local runs with the memory driver.
func SeedDemo(s *Store) {
	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	s.write(context.Background(), func(t *tables) {
		t.tournaments[TournamentIDJakartaOpen] = tournament.Tournament{
			ID:        TournamentIDJakartaOpen,
			Name:      "Jakarta Open 2026",
			Status:    tournament.StatusInProgress,
			CreatedAt: base,
			UpdatedAt: base,
		}

		t.contests[ContestIDJakartaMain] = contest.Contest{
			ID:           ContestIDJakartaMain,
			TournamentID: TournamentIDJakartaOpen,
			Name:         "Jakarta Open Main Contest",
			EntryFee:     decimal.NewFromInt(2000),
			PrizePool:    decimal.NewFromInt(10000),
			MaxEntries:   50,
			Status:       contest.StatusInProgress,
			CreatedAt:    base,
			UpdatedAt:    base,
		}

		for i := 1; i <= 6; i++ {
			teamID := fmt.Sprintf("team-%02d", i)
			created := base.Add(time.Duration(i) * time.Minute)
			t.teams[teamID] = contest.Team{
				ID:        teamID,
				ContestID: ContestIDJakartaMain,
				UserID:    fmt.Sprintf("user-%02d", i),
				Name:      fmt.Sprintf("Dinkers %d", i),
				Roster: []contest.RosterMember{
					{PlayerID: seedPlayer(i), IsCaptain: true},
					{PlayerID: seedPlayer(i + 1), IsViceCaptain: true},
					{PlayerID: seedPlayer(i + 2)},
					{PlayerID: seedPlayer(i + 3)},
				},
				CreatedAt: created,
				UpdatedAt: created,
			}
		}

		scope := prize.TournamentScope(TournamentIDJakartaOpen)
		t.rules[scope] = []prize.StoredRule{
			{ID: "rule-seed-1", Scope: scope, Rule: prize.Rule{Rank: 1, Percentage: decimal.NewFromInt(70), MinPlayers: 1}, CreatedAt: base},
			{ID: "rule-seed-2", Scope: scope, Rule: prize.Rule{Rank: 2, Percentage: decimal.NewFromInt(30), MinPlayers: 2}, CreatedAt: base},
		}
	})
}

// seedPlayer wraps around an eight player field.
func seedPlayer(n int) string {
	return fmt.Sprintf("player-%02d", (n-1)%8+1)
}
