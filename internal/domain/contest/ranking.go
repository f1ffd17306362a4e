package contest

import "sort"

// Rank orders teams by total points descending. Equal totals fall back to the
// earlier created team, then the smaller team id, so reruns are stable.
// Ranks are 1..n by position with no shared places.
func Rank(teams []Team) []Standing {
	sorted := append([]Team(nil), teams...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	out := make([]Standing, 0, len(sorted))
	for i, t := range sorted {
		out = append(out, Standing{
			TeamID:      t.ID,
			UserID:      t.UserID,
			Rank:        i + 1,
			TotalPoints: t.TotalPoints,
		})
	}
	return out
}

// SortByRank orders already ranked teams; unranked teams go last.
func SortByRank(teams []Team) {
	sort.SliceStable(teams, func(i, j int) bool {
		ri, rj := teams[i].Rank, teams[j].Rank
		if (ri == 0) != (rj == 0) {
			return rj == 0
		}
		return ri < rj
	})
}
