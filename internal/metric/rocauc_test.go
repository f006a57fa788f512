package metric

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestBinaryAUC(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		positive []bool
		want     float64
	}{
		{
			name:     "perfect separation",
			scores:   []float64{0.1, 0.2, 0.8, 0.9},
			positive: []bool{false, false, true, true},
			want:     1,
		},
		{
			name:     "inverted separation",
			scores:   []float64{0.9, 0.8, 0.2, 0.1},
			positive: []bool{false, false, true, true},
			want:     0,
		},
		{
			// positives 0.35 and 0.8 against negatives 0.1 and 0.4:
			// 3 of 4 pairs correctly ordered.
			name:     "one misordered pair",
			scores:   []float64{0.1, 0.4, 0.35, 0.8},
			positive: []bool{false, false, true, true},
			want:     0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryAUC(tt.scores, tt.positive)
			if err != nil {
				t.Fatalf("BinaryAUC() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("BinaryAUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

// pairwiseAUC is the Mann-Whitney form: the fraction of
// (positive, negative) pairs ranked correctly, ties counting half.
func pairwiseAUC(scores []float64, positive []bool) float64 {
	var pairs, ordered float64
	for i := range scores {
		if !positive[i] {
			continue
		}
		for j := range scores {
			if positive[j] {
				continue
			}
			pairs++
			switch {
			case scores[i] > scores[j]:
				ordered++
			case scores[i] == scores[j]:
				ordered += 0.5
			}
		}
	}
	return ordered / pairs
}

func TestBinaryAUCMatchesPairwiseCount(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	for trial := 0; trial < 20; trial++ {
		n := 10 + rng.Intn(40)
		scores := make([]float64, n)
		positive := make([]bool, n)
		nPos := 0
		for i := range scores {
			// Coarse grid forces ties between scores.
			scores[i] = float64(rng.Intn(5)) / 4
			positive[i] = rng.Float64() < 0.4
			if positive[i] {
				nPos++
			}
		}
		if nPos == 0 || nPos == n {
			continue
		}

		got, err := BinaryAUC(scores, positive)
		if err != nil {
			t.Fatalf("trial %d: BinaryAUC() error = %v", trial, err)
		}
		if want := pairwiseAUC(scores, positive); math.Abs(got-want) > 1e-9 {
			t.Errorf("trial %d: BinaryAUC() = %v, pairwise count = %v", trial, got, want)
		}
	}
}

func TestBinaryAUCClassAbsent(t *testing.T) {
	_, err := BinaryAUC([]float64{0.1, 0.9}, []bool{true, true})
	if !errors.Is(err, ErrClassAbsent) {
		t.Errorf("all-positive error = %v, want ErrClassAbsent", err)
	}
	_, err = BinaryAUC([]float64{0.1, 0.9}, []bool{false, false})
	if !errors.Is(err, ErrClassAbsent) {
		t.Errorf("all-negative error = %v, want ErrClassAbsent", err)
	}
}

func TestMacroOVRAUCPerfect(t *testing.T) {
	y := []int{0, 1, 2, 0, 1, 2}
	proba := [][]float64{
		{0.9, 0.05, 0.05},
		{0.05, 0.9, 0.05},
		{0.05, 0.05, 0.9},
		{0.8, 0.1, 0.1},
		{0.1, 0.8, 0.1},
		{0.1, 0.1, 0.8},
	}
	got, err := MacroOVRAUC(y, proba, 3)
	if err != nil {
		t.Fatalf("MacroOVRAUC() error = %v", err)
	}
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("MacroOVRAUC() = %v, want 1", got)
	}
}

func TestMacroOVRAUCMissingClass(t *testing.T) {
	y := []int{0, 0, 1, 1} // class 2 never observed
	proba := [][]float64{
		{0.5, 0.3, 0.2},
		{0.6, 0.2, 0.2},
		{0.2, 0.6, 0.2},
		{0.3, 0.5, 0.2},
	}
	_, err := MacroOVRAUC(y, proba, 3)
	if !errors.Is(err, ErrClassAbsent) {
		t.Errorf("MacroOVRAUC() error = %v, want ErrClassAbsent", err)
	}
}

func TestMacroOVRAUCShapeMismatch(t *testing.T) {
	if _, err := MacroOVRAUC([]int{0, 1}, [][]float64{{1, 0}}, 2); err == nil {
		t.Error("mismatched lengths should fail")
	}
	if _, err := MacroOVRAUC(nil, nil, 2); err == nil {
		t.Error("empty input should fail")
	}
}
