package search

import (
	"sort"

	"github.com/kailas-cloud/lexrag/internal/domain/search/result"
)

// Rank orders results by score descending, keeps the first limit entries and
// then drops zero scores. Equal scores keep their input order.
func Rank(scored []result.Result, limit int) []result.Result {
	ranked := make([]result.Result, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})

	if limit < 0 {
		limit = 0
	}
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	selected := ranked[:0]
	for _, r := range ranked {
		if r.Score() > 0 {
			selected = append(selected, r)
		}
	}
	return selected
}
