package analytics

import (
	"cmp"
	"slices"

	"portfolio/api/models"
)

// Ranked is one entry of a frequency ranking.
type Ranked struct {
	Key   string
	Count int
	Title string
}

// TopN counts hits per key and returns at most n entries ordered by count,
// highest first. Keys with equal counts keep the order in which they were
// first seen. An entry's title is the first non-empty title recorded for its
// key, or the key itself when none was recorded.
func TopN(hits []models.KeyHit, n int) []Ranked {
	ranked := make([]Ranked, 0)
	index := make(map[string]int)

	for _, hit := range hits {
		i, ok := index[hit.Key]
		if !ok {
			i = len(ranked)
			index[hit.Key] = i
			ranked = append(ranked, Ranked{Key: hit.Key})
		}
		ranked[i].Count++
		if ranked[i].Title == "" && hit.Title != "" {
			ranked[i].Title = hit.Title
		}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		if ranked[i].Title == "" {
			ranked[i].Title = ranked[i].Key
		}
	}
	return ranked
}
