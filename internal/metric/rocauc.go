// Package metric scores predicted class probabilities against true
// labels with multiclass ROC-AUC, computed as the unweighted macro
// average of one-vs-rest AUC values.
package metric

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ErrClassAbsent means a class had no positive (or no negative)
// observations, leaving its one-vs-rest AUC undefined.
var ErrClassAbsent = errors.New("metric: class absent from observations")

// MacroOVRAUC averages the one-vs-rest AUC of every class. proba rows
// must be ordered like the class ids in y.
func MacroOVRAUC(y []int, proba [][]float64, nClasses int) (float64, error) {
	if len(y) == 0 || len(y) != len(proba) {
		return 0, fmt.Errorf("metric: %d labels for %d probability rows", len(y), len(proba))
	}
	var sum float64
	for c := 0; c < nClasses; c++ {
		scores := make([]float64, len(y))
		pos := make([]bool, len(y))
		for i := range y {
			scores[i] = proba[i][c]
			pos[i] = y[i] == c
		}
		auc, err := BinaryAUC(scores, pos)
		if err != nil {
			return 0, fmt.Errorf("class %d: %w", c, err)
		}
		sum += auc
	}
	return sum / float64(nClasses), nil
}

// BinaryAUC integrates the ROC curve of one score column against a
// binary label vector.
func BinaryAUC(scores []float64, positive []bool) (float64, error) {
	nPos := 0
	for _, p := range positive {
		if p {
			nPos++
		}
	}
	if nPos == 0 || nPos == len(positive) {
		return 0, ErrClassAbsent
	}

	s := make([]float64, len(scores))
	copy(s, scores)
	labels := make([]bool, len(positive))
	copy(labels, positive)

	stat.SortWeightedLabeled(s, labels, nil)
	tpr, fpr, _ := stat.ROC(nil, s, labels, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}
