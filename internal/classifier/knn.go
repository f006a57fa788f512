package classifier

import (
	"errors"
	"sort"
)

// KNN is the nearest-neighbor family. Training just stores the data;
// probabilities are neighbor vote fractions.
type KNN struct{}

func NewKNN() *KNN { return &KNN{} }

func (*KNN) Name() string { return "knn" }

func (*KNN) Grid() []ParamSpec {
	return []ParamSpec{
		{Name: "neighbors", Values: LinspaceInt(1, 10, 10)},
	}
}

func (*KNN) Train(x [][]float64, y []int, nClasses int, params map[string]float64, seed int64) (Model, error) {
	k := int(params["neighbors"])
	if k < 1 {
		return nil, errors.New("knn: neighbors must be at least 1")
	}
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("knn: feature rows and labels must match and be non-empty")
	}
	if k > len(x) {
		k = len(x)
	}
	return &knnModel{k: k, x: x, y: y, nClasses: nClasses}, nil
}

type knnModel struct {
	k        int
	x        [][]float64
	y        []int
	nClasses int
}

func (m *knnModel) PredictProba(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = m.predictRow(row)
	}
	return out
}

func (m *knnModel) predictRow(xi []float64) []float64 {
	type neighbor struct {
		dist  float64
		class int
	}

	// Maintain the k closest points seen so far, sorted by distance.
	nbrs := make([]neighbor, 0, m.k+1)
	for j, xj := range m.x {
		d := euclidSquared(xi, xj)
		if len(nbrs) < m.k {
			nbrs = append(nbrs, neighbor{dist: d, class: m.y[j]})
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].dist < nbrs[b].dist })
		} else if d < nbrs[len(nbrs)-1].dist {
			nbrs[len(nbrs)-1] = neighbor{dist: d, class: m.y[j]}
			sort.Slice(nbrs, func(a, b int) bool { return nbrs[a].dist < nbrs[b].dist })
		}
	}

	proba := make([]float64, m.nClasses)
	for _, n := range nbrs {
		proba[n.class]++
	}
	for c := range proba {
		proba[c] /= float64(len(nbrs))
	}
	return proba
}

// euclidSquared avoids the square root; only the ordering matters.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
