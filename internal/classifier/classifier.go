// Package classifier holds the candidate model families behind a
// uniform train/predict contract, plus the declarative hyperparameter
// grids the search enumerates.
package classifier

// Model is an opaque fitted classifier.
type Model interface {
	// PredictProba returns one probability row per input row, ordered by
	// class id. Rows sum to 1.
	PredictProba(x [][]float64) [][]float64
}

// Family is one candidate classifier family. Train must not retain or
// mutate x and y beyond the returned model, so concurrent cells stay
// independent.
type Family interface {
	Name() string
	Grid() []ParamSpec
	Train(x [][]float64, y []int, nClasses int, params map[string]float64, seed int64) (Model, error)
}

// Registry returns the default candidate families in evaluation order.
func Registry() []Family {
	return []Family{
		NewKNN(),
		NewMultinomial(),
		NewElasticNet(),
		NewRandomForest(),
	}
}

// ParamOrder returns the hyperparameter names of a family in grid
// declaration order, used as the deterministic simplicity tiebreak.
func ParamOrder(f Family) []string {
	specs := f.Grid()
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names
}
