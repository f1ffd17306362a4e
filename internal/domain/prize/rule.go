package prize

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyRuleSet        = errors.New("prize rule set is empty")
	ErrInvalidRank         = errors.New("prize ranks must be 1..n without gaps or duplicates")
	ErrInvalidPercentage   = errors.New("prize percentage must be > 0 and <= 100")
	ErrPercentagePrecision = errors.New("prize percentage allows at most 2 decimal places")
	ErrInvalidMinPlayers   = errors.New("prize min players must be >= 1")
	ErrPercentageSumNot100 = errors.New("prize percentages must sum to exactly 100")
	ErrInvalidScope        = errors.New("prize rule scope requires a tournament")
)

var hundred = decimal.NewFromInt(100)

const percentageScale = 2

// Scope selects a rule set. An empty ContestID is the tournament default.
type Scope struct {
	TournamentID string
	ContestID    string
}

func TournamentScope(tournamentID string) Scope {
	return Scope{TournamentID: tournamentID}
}

func ContestScope(tournamentID, contestID string) Scope {
	return Scope{TournamentID: tournamentID, ContestID: contestID}
}

func (s Scope) IsContest() bool {
	return s.ContestID != ""
}

func (s Scope) String() string {
	if s.IsContest() {
		return "contest:" + s.ContestID
	}
	return "tournament:" + s.TournamentID
}

// Rule is one (rank, percentage, minPlayers) entry of a scope's table.
type Rule struct {
	Rank       int
	Percentage decimal.Decimal
	MinPlayers int
}

// StoredRule is a persisted rule row.
type StoredRule struct {
	ID        string
	Scope     Scope
	Rule      Rule
	CreatedAt time.Time
}

// RuleSet is an ordered, validated list of rules for one scope. It is replaced
// as a whole and never patched.
type RuleSet []Rule

// NewRuleSet validates rules and returns them ordered by rank.
func NewRuleSet(rules []Rule) (RuleSet, error) {
	if len(rules) == 0 {
		return nil, ErrEmptyRuleSet
	}

	out := append(RuleSet(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })

	sum := decimal.Zero
	for i, r := range out {
		if r.Rank != i+1 {
			return nil, fmt.Errorf("%w: got rank %d at position %d", ErrInvalidRank, r.Rank, i+1)
		}
		if !r.Percentage.IsPositive() || r.Percentage.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: rank %d has %s", ErrInvalidPercentage, r.Rank, r.Percentage)
		}
		// Stored as NUMERIC(5,2); a finer scale would be rounded and break the sum.
		if !r.Percentage.Equal(r.Percentage.Round(percentageScale)) {
			return nil, fmt.Errorf("%w: rank %d has %s", ErrPercentagePrecision, r.Rank, r.Percentage)
		}
		if r.MinPlayers < 1 {
			return nil, fmt.Errorf("%w: rank %d has %d", ErrInvalidMinPlayers, r.Rank, r.MinPlayers)
		}
		sum = sum.Add(r.Percentage)
	}
	if !sum.Equal(hundred) {
		return nil, fmt.Errorf("%w: got %s", ErrPercentageSumNot100, sum)
	}
	return out, nil
}

// Applicable keeps the rules whose MinPlayers threshold is met by teamCount, in rank order.
func (s RuleSet) Applicable(teamCount int) RuleSet {
	out := make(RuleSet, 0, len(s))
	for _, r := range s {
		if r.MinPlayers <= teamCount {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

// PaidPositions is min(len(rules), teamCount).
func PaidPositions(rules RuleSet, teamCount int) int {
	return min(len(rules), max(teamCount, 0))
}

func RulesOf(stored []StoredRule) RuleSet {
	out := make(RuleSet, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.Rule)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}
