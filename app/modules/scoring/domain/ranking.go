package scoringdomain

import (
	"cmp"
	"slices"
)

// Ranked pairs an entity ID with the score being ranked.
type Ranked struct {
	ID    int64
	Score Points
}

// DenseRank assigns dense descending ranks: equal scores share a rank and
// the next distinct score continues at rank+1. Ties are broken by ID
// ascending in the returned order, so repeated runs over the same input
// produce identical output.
func DenseRank(entries []Ranked) map[int64]int {
	sorted := make([]Ranked, len(entries))
	copy(sorted, entries)

	slicesSortByScoreDesc(sorted)

	ranks := make(map[int64]int, len(sorted))
	rank := 0
	var prev Points
	for i, entry := range sorted {
		if i == 0 || entry.Score != prev {
			rank++
			prev = entry.Score
		}
		ranks[entry.ID] = rank
	}
	return ranks
}

func slicesSortByScoreDesc(entries []Ranked) {
	slices.SortFunc(entries, func(a, b Ranked) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
