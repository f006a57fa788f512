package classifier

import (
	"errors"
	"math/rand"
	"runtime"
	"sync"
)

// RandomForest is the ensemble-of-trees family: bootstrap-sampled CART
// trees whose leaf distributions are averaged into class probabilities.
type RandomForest struct{}

func NewRandomForest() *RandomForest { return &RandomForest{} }

func (*RandomForest) Name() string { return "rand_forest" }

func (*RandomForest) Grid() []ParamSpec {
	return []ParamSpec{
		{Name: "mtry", Values: LinspaceInt(1, 5, 10)},
		{Name: "trees", Values: LinspaceInt(200, 500, 10)},
		{Name: "min_n", Values: LinspaceInt(10, 20, 10)},
	}
}

func (*RandomForest) Train(x [][]float64, y []int, nClasses int, params map[string]float64, seed int64) (Model, error) {
	nTrees := int(params["trees"])
	mtry := int(params["mtry"])
	minN := int(params["min_n"])
	if nTrees < 1 || mtry < 1 || minN < 2 {
		return nil, errors.New("rand_forest: trees and mtry must be >= 1, min_n >= 2")
	}
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("rand_forest: feature rows and labels must match and be non-empty")
	}
	n := len(x)
	tp := treeParams{mtry: mtry, minSplit: minN, nClasses: nClasses}

	trees := make([]*treeNode, nTrees)
	workers := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	for i := 0; i < nTrees; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			// Own rand stream per tree keeps the fit deterministic
			// regardless of scheduling.
			rng := rand.New(rand.NewSource(seed + int64(idx)))
			sample := make([]int, n)
			for j := range sample {
				sample[j] = rng.Intn(n)
			}
			trees[idx] = growTree(x, y, sample, tp, rng)
		}(i)
	}
	wg.Wait()

	return &forestModel{trees: trees, nClasses: nClasses}, nil
}

type forestModel struct {
	trees    []*treeNode
	nClasses int
}

func (m *forestModel) PredictProba(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		proba := make([]float64, m.nClasses)
		for _, t := range m.trees {
			for c, p := range t.predictRow(row) {
				proba[c] += p
			}
		}
		for c := range proba {
			proba[c] /= float64(len(m.trees))
		}
		out[i] = proba
	}
	return out
}
