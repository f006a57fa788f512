// Package recipe implements the leakage-safe preprocessing transform:
// dummy encoding for categorical predictors and standardization for
// numeric predictors, fitted once on a training subset and frozen.
package recipe

import (
	"fmt"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/openchess/tuner-api/internal/dataset"
)

// Spec names the predictor columns, in the order their features appear
// in the output matrix.
type Spec struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// State holds the frozen fit: per-numeric mean and standard deviation,
// and per-categorical dummy tables with one reference level dropped.
// Never recomputed from non-training data.
type State struct {
	spec      Spec
	mean      map[string]float64
	std       map[string]float64
	levels    map[string][]string // indicator levels, alphabetical, reference omitted
	reference map[string]string
	cols      int
}

// DegenerateFeatureError reports a numeric predictor with zero
// training-set variance. Fatal for the fit it occurred in.
type DegenerateFeatureError struct {
	Column string
}

func (e *DegenerateFeatureError) Error() string {
	return fmt.Sprintf("recipe: numeric predictor %q has zero variance in the training set", e.Column)
}

// Fit computes the frozen statistics and encodings from the training
// subset only.
func Fit(train *dataset.Table, spec Spec) (*State, error) {
	s := &State{
		spec:      spec,
		mean:      make(map[string]float64, len(spec.Numeric)),
		std:       make(map[string]float64, len(spec.Numeric)),
		levels:    make(map[string][]string, len(spec.Categorical)),
		reference: make(map[string]string, len(spec.Categorical)),
	}

	for _, name := range spec.Numeric {
		col, err := train.Numeric(name)
		if err != nil {
			return nil, err
		}
		mean, std := meanStd(col)
		if std == 0 {
			return nil, &DegenerateFeatureError{Column: name}
		}
		s.mean[name] = mean
		s.std[name] = std
		s.cols++
	}

	for _, name := range spec.Categorical {
		col, err := train.Categorical(name)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]struct{})
		var all []string
		for _, v := range col {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				all = append(all, v)
			}
		}
		sort.Strings(all)
		s.reference[name] = all[0]
		s.levels[name] = all[1:]
		s.cols += len(all) - 1
	}

	return s, nil
}

// Apply emits the numeric matrix for any table using the frozen state.
// Column order is identical across every call for a given state. An
// unseen category maps to the reference encoding (all-zero indicators).
func (s *State) Apply(t *dataset.Table) ([][]float64, error) {
	type numericCol struct {
		values    []float64
		mean, std float64
	}
	nums := make([]numericCol, 0, len(s.spec.Numeric))
	for _, name := range s.spec.Numeric {
		col, err := t.Numeric(name)
		if err != nil {
			return nil, err
		}
		nums = append(nums, numericCol{values: col, mean: s.mean[name], std: s.std[name]})
	}
	type categoricalCol struct {
		values []string
		index  map[string]int // level -> indicator offset
		width  int
	}
	cats := make([]categoricalCol, 0, len(s.spec.Categorical))
	for _, name := range s.spec.Categorical {
		col, err := t.Categorical(name)
		if err != nil {
			return nil, err
		}
		index := make(map[string]int, len(s.levels[name]))
		for i, level := range s.levels[name] {
			index[level] = i
		}
		cats = append(cats, categoricalCol{values: col, index: index, width: len(s.levels[name])})
	}

	out := make([][]float64, t.Len())
	for i := range out {
		row := make([]float64, 0, s.cols)
		for _, nc := range nums {
			row = append(row, (nc.values[i]-nc.mean)/nc.std)
		}
		for _, cc := range cats {
			dummies := make([]float64, cc.width)
			if j, ok := cc.index[cc.values[i]]; ok {
				dummies[j] = 1
			}
			row = append(row, dummies...)
		}
		out[i] = row
	}
	return out, nil
}

// Columns returns the width of the emitted matrix.
func (s *State) Columns() int { return s.cols }

// Checksum fingerprints the frozen statistics. Taking it before and
// after a downstream step verifies the state was not refitted.
func (s *State) Checksum() uint64 {
	h := xxhash.New()
	for _, name := range s.spec.Numeric {
		fmt.Fprintf(h, "n|%s|%v|%v", name, s.mean[name], s.std[name])
	}
	for _, name := range s.spec.Categorical {
		fmt.Fprintf(h, "c|%s|%s", name, s.reference[name])
		for _, level := range s.levels[name] {
			h.WriteString("|" + level)
		}
	}
	return h.Sum64()
}

// meanStd computes the mean and sample standard deviation (n-1
// denominator).
func meanStd(col []float64) (mean, std float64) {
	n := float64(len(col))
	for _, v := range col {
		mean += v
	}
	mean /= n
	if len(col) < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range col {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / (n - 1))
}
