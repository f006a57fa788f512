package dataset

import (
	"fmt"
	"math/rand"
)

// FoldAssignment maps every row of the training table to a fold id in
// 1..K. Frozen once constructed.
type FoldAssignment struct {
	K    int
	Fold []int // fold id per training row
}

// StratifiedKFold shuffles each stratification class deterministically
// and deals its members round-robin across k folds, so per-class fold
// sizes differ by at most one. The deal continues across classes rather
// than restarting at fold 1, so no fold is left empty when every class
// is smaller than k.
func StratifiedKFold(train *Table, stratify string, k int, seed int64) (*FoldAssignment, error) {
	if k < 2 {
		return nil, &ConfigError{Reason: fmt.Sprintf("fold count %d, need at least 2", k)}
	}
	if k > train.Len() {
		return nil, &ConfigError{Reason: fmt.Sprintf("fold count %d exceeds %d training rows", k, train.Len())}
	}
	groups, labels, err := groupByLabel(train, stratify)
	if err != nil {
		return nil, err
	}

	fa := &FoldAssignment{K: k, Fold: make([]int, train.Len())}
	rng := rand.New(rand.NewSource(seed))
	offset := 0
	for _, label := range labels {
		idx := groups[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		for i, row := range idx {
			fa.Fold[row] = (offset+i)%k + 1
		}
		offset += len(idx)
	}
	return fa, nil
}

// Split returns the fold-train and fold-validation row indices for one
// fold id.
func (fa *FoldAssignment) Split(fold int) (trainIdx, valIdx []int) {
	for row, f := range fa.Fold {
		if f == fold {
			valIdx = append(valIdx, row)
		} else {
			trainIdx = append(trainIdx, row)
		}
	}
	return trainIdx, valIdx
}
