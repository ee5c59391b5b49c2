package stats

import (
	"sort"

	"github.com/verte-zerg/tuireact/internal/model"
)

// SlowestTrials returns up to n trials of the given kind ordered by latency, slowest first.
func SlowestTrials(trials []model.StoredTrial, kind model.TrialKind, n int) []model.StoredTrial {
	if n <= 0 || len(trials) == 0 {
		return nil
	}
	items := make([]model.StoredTrial, 0, len(trials))
	for _, tr := range trials {
		if tr.Kind == kind {
			items = append(items, tr)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].LatencyMs == items[j].LatencyMs {
			if items[i].RunID == items[j].RunID {
				return items[i].Index < items[j].Index
			}
			return items[i].RunID < items[j].RunID
		}
		return items[i].LatencyMs > items[j].LatencyMs
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
