package tuning

import (
	"errors"
	"math"
	"sort"

	"github.com/openchess/tuner-api/internal/classifier"
	"github.com/openchess/tuner-api/internal/models"
)

// aggregateFamily reduces the per-cell scores of one family to a ranked
// TuningResult: mean metric, sample standard deviation and successful
// fold count per config.
func aggregateFamily(family classifier.Family, configs []map[string]float64, coll *collector, k int) *models.TuningResult {
	paramOrder := classifier.ParamOrder(family)
	entries := make([]models.TuningEntry, 0, len(configs))
	for i, params := range configs {
		entry := models.TuningEntry{
			Config: models.ModelConfig{Family: family.Name(), Params: params},
		}
		var sum float64
		for fold := 0; fold < k; fold++ {
			if coll.ok[i][fold] {
				sum += coll.scores[i][fold]
				entry.Folds++
			}
		}
		if entry.Folds > 0 {
			entry.Mean = sum / float64(entry.Folds)
			if entry.Folds > 1 {
				var ss float64
				for fold := 0; fold < k; fold++ {
					if coll.ok[i][fold] {
						d := coll.scores[i][fold] - entry.Mean
						ss += d * d
					}
				}
				entry.StdDev = math.Sqrt(ss / float64(entry.Folds-1))
			}
		}
		entries = append(entries, entry)
	}

	RankEntries(entries, paramOrder)
	return &models.TuningResult{Family: family.Name(), Entries: entries}
}

// RankEntries orders entries best-first: higher mean, then lower
// standard deviation, then simpler hyperparameters (values compared in
// grid declaration order, smaller first). Entries with no successful
// fold rank last.
func RankEntries(entries []models.TuningEntry, paramOrder []string) {
	sort.SliceStable(entries, func(i, j int) bool {
		return betterEntry(entries[i], entries[j], paramOrder, paramOrder)
	})
}

func betterEntry(a, b models.TuningEntry, orderA, orderB []string) bool {
	switch {
	case a.Defined() != b.Defined():
		return a.Defined()
	case !a.Defined():
		return false
	case a.Mean != b.Mean:
		return a.Mean > b.Mean
	case a.StdDev != b.StdDev:
		return a.StdDev < b.StdDev
	}
	// Simplicity tiebreak.
	n := len(orderA)
	if len(orderB) < n {
		n = len(orderB)
	}
	for i := 0; i < n; i++ {
		va, vb := a.Config.Params[orderA[i]], b.Config.Params[orderB[i]]
		if va != vb {
			return va < vb
		}
	}
	// Cross-family tie: family name keeps the choice deterministic.
	return a.Config.Family < b.Config.Family
}

// SelectBest picks the global argmax across every family's top entry.
func SelectBest(results map[string]*models.TuningResult, families []classifier.Family) (models.TuningEntry, error) {
	var (
		best      models.TuningEntry
		bestOrder []string
		found     bool
	)
	for _, family := range families {
		result, ok := results[family.Name()]
		if !ok {
			continue
		}
		entry, ok := result.Best()
		if !ok {
			continue
		}
		order := classifier.ParamOrder(family)
		if !found || betterEntry(entry, best, order, bestOrder) {
			best = entry
			bestOrder = order
			found = true
		}
	}
	if !found || !best.Defined() {
		return models.TuningEntry{}, errors.New("tuning: no config produced a defined metric")
	}
	return best, nil
}
