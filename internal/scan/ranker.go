package scan

import (
	"math"
	"sort"

	"PatternScout/internal/model"
)

// Rank orders signals by score descending, then absolute proximity to
// the support average ascending (tighter setups first), then symbol
// code ascending. The key is a total order, so the result is identical
// for any input permutation. The input slice is not modified.
func Rank(signals []*model.Signal) []*model.Signal {
	ranked := make([]*model.Signal, len(signals))
	copy(ranked, signals)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		pa, pb := math.Abs(a.ProximityPct), math.Abs(b.ProximityPct)
		if pa != pb {
			return pa < pb
		}
		return a.Code < b.Code
	})
	return ranked
}

// Truncate keeps the top n signals. n <= 0 keeps everything.
func Truncate(signals []*model.Signal, n int) []*model.Signal {
	if n <= 0 || len(signals) <= n {
		return signals
	}
	return signals[:n]
}
