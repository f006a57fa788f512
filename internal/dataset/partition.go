package dataset

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Partition is a disjoint, exhaustive train/test assignment over a
// table. Indices refer to rows of the table the partition was built
// from and are frozen once constructed.
type Partition struct {
	TrainIdx []int
	TestIdx  []int
}

// StratifiedSplit groups rows by the stratification column, shuffles
// each group deterministically with the seed, and slices each group at
// round(p*len). Per-label train proportions land within rounding
// tolerance of p.
func StratifiedSplit(t *Table, stratify string, p float64, seed int64) (*Partition, error) {
	if p <= 0 || p >= 1 {
		return nil, &ConfigError{Reason: fmt.Sprintf("train proportion %g outside (0,1)", p)}
	}
	groups, labels, err := groupByLabel(t, stratify)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))
	part := &Partition{}
	for _, label := range labels {
		idx := groups[label]
		if len(idx) < 2 {
			return nil, &ConfigError{Reason: fmt.Sprintf("class %q of column %q has %d member(s), need at least 2", label, stratify, len(idx))}
		}
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		cut := int(math.Round(p * float64(len(idx))))
		if cut < 1 {
			cut = 1
		}
		if cut >= len(idx) {
			cut = len(idx) - 1
		}
		part.TrainIdx = append(part.TrainIdx, idx[:cut]...)
		part.TestIdx = append(part.TestIdx, idx[cut:]...)
	}

	sort.Ints(part.TrainIdx)
	sort.Ints(part.TestIdx)
	return part, nil
}

// groupByLabel collects row indices per class value, with classes in
// sorted order for deterministic iteration.
func groupByLabel(t *Table, column string) (map[string][]int, []string, error) {
	col, err := t.Categorical(column)
	if err != nil {
		return nil, nil, err
	}
	groups := make(map[string][]int)
	for i, v := range col {
		groups[v] = append(groups[v], i)
	}
	labels := make([]string, 0, len(groups))
	for label := range groups {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return groups, labels, nil
}
