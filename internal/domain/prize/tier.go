package prize

import "github.com/shopspring/decimal"

// Tier is the payout shape for a band of entrant counts. MaxEntrants of 0 means unbounded.
type Tier struct {
	MinEntrants int
	MaxEntrants int
	Percentages []int64
}

// Tiers is ordered by MinEntrants.
var Tiers = []Tier{
	{MinEntrants: 0, MaxEntrants: 4, Percentages: []int64{100}},
	{MinEntrants: 5, MaxEntrants: 8, Percentages: []int64{70, 30}},
	{MinEntrants: 9, MaxEntrants: 15, Percentages: []int64{60, 25, 15}},
	{MinEntrants: 16, MaxEntrants: 25, Percentages: []int64{50, 25, 15, 7, 3}},
	{MinEntrants: 26, Percentages: []int64{40, 20, 15, 7, 5, 4, 3, 3, 2, 1}},
}

func TierFor(entrants int) Tier {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if entrants >= Tiers[i].MinEntrants {
			return Tiers[i]
		}
	}
	return Tiers[0]
}

// Rules expands the tier into a rule set. Rank k requires at least k teams.
func (t Tier) Rules() RuleSet {
	out := make(RuleSet, 0, len(t.Percentages))
	for i, pct := range t.Percentages {
		out = append(out, Rule{
			Rank:       i + 1,
			Percentage: decimal.NewFromInt(pct),
			MinPlayers: i + 1,
		})
	}
	return out
}

// Pool is entryFee * entrants * payoutPercent / 100, truncated to cents.
func Pool(entryFee decimal.Decimal, entrants int, payoutPercent decimal.Decimal) decimal.Decimal {
	if entrants <= 0 {
		return decimal.Zero
	}
	return entryFee.
		Mul(decimal.NewFromInt(int64(entrants))).
		Mul(payoutPercent).
		Div(hundred).
		RoundDown(2)
}
