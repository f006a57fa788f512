package classifier

import (
	"math"
	"math/rand"
	"reflect"
	"testing"
)

// separableData builds two well-separated gaussian clusters, one per class.
func separableData(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, 0, 2*n)
	y := make([]int, 0, 2*n)
	for i := 0; i < n; i++ {
		x = append(x, []float64{rng.NormFloat64()*0.5 - 3, rng.NormFloat64() * 0.5})
		y = append(y, 0)
		x = append(x, []float64{rng.NormFloat64()*0.5 + 3, rng.NormFloat64() * 0.5})
		y = append(y, 1)
	}
	return x, y
}

func accuracy(t *testing.T, m Model, x [][]float64, y []int) float64 {
	t.Helper()
	proba := m.PredictProba(x)
	correct := 0
	for i, row := range proba {
		sum := 0.0
		best, bestP := 0, -1.0
		for c, p := range row {
			sum += p
			if p > bestP {
				best, bestP = c, p
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("row %d probabilities sum to %v", i, sum)
		}
		if best == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(y))
}

func TestRegistry(t *testing.T) {
	names := make([]string, 0, 4)
	for _, f := range Registry() {
		names = append(names, f.Name())
	}
	want := []string{"knn", "multinom", "glmnet", "rand_forest"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("registry order = %v, want %v", names, want)
	}
}

func TestKNNSeparable(t *testing.T) {
	x, y := separableData(50, 7)
	m, err := NewKNN().Train(x, y, 2, map[string]float64{"neighbors": 5}, 7)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if acc := accuracy(t, m, x, y); acc < 0.95 {
		t.Errorf("accuracy = %v on separable data", acc)
	}
}

func TestKNNNeighborsCapped(t *testing.T) {
	x := [][]float64{{0}, {1}, {2}}
	y := []int{0, 0, 1}
	m, err := NewKNN().Train(x, y, 2, map[string]float64{"neighbors": 50}, 1)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	// All three rows vote: 2/3 class 0, 1/3 class 1.
	proba := m.PredictProba([][]float64{{0.5}})
	if math.Abs(proba[0][0]-2.0/3) > 1e-9 {
		t.Errorf("proba = %v, want [2/3 1/3]", proba[0])
	}
}

func TestSoftmaxSeparable(t *testing.T) {
	x, y := separableData(50, 11)
	m, err := NewMultinomial().Train(x, y, 2, map[string]float64{"penalty": 0}, 11)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if acc := accuracy(t, m, x, y); acc < 0.95 {
		t.Errorf("accuracy = %v on separable data", acc)
	}
}

func TestElasticNetPenaltyShrinks(t *testing.T) {
	x, y := separableData(50, 13)

	free, err := NewElasticNet().Train(x, y, 2, map[string]float64{"penalty": 0, "mixture": 0.5}, 13)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	heavy, err := NewElasticNet().Train(x, y, 2, map[string]float64{"penalty": 1, "mixture": 0.5}, 13)
	if err != nil {
		t.Fatalf("train: %v", err)
	}

	norm := func(m Model) float64 {
		w := m.(*softmaxModel).w
		var s float64
		for _, row := range w {
			for _, v := range row {
				s += v * v
			}
		}
		return s
	}
	if norm(heavy) >= norm(free) {
		t.Errorf("penalized norm %v not smaller than unpenalized %v", norm(heavy), norm(free))
	}
}

func TestForestSeparable(t *testing.T) {
	x, y := separableData(50, 17)
	params := map[string]float64{"mtry": 1, "trees": 50, "min_n": 5}
	m, err := NewRandomForest().Train(x, y, 2, params, 17)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if acc := accuracy(t, m, x, y); acc < 0.95 {
		t.Errorf("accuracy = %v on separable data", acc)
	}
}

func TestForestDeterministic(t *testing.T) {
	x, y := separableData(30, 19)
	params := map[string]float64{"mtry": 2, "trees": 20, "min_n": 5}

	a, err := NewRandomForest().Train(x, y, 2, params, 42)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	b, err := NewRandomForest().Train(x, y, 2, params, 42)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !reflect.DeepEqual(a.PredictProba(x), b.PredictProba(x)) {
		t.Error("same seed produced different forests")
	}
}

func TestForestParamValidation(t *testing.T) {
	x, y := separableData(10, 23)
	tests := []struct {
		name   string
		params map[string]float64
	}{
		{"zero trees", map[string]float64{"mtry": 1, "trees": 0, "min_n": 5}},
		{"zero mtry", map[string]float64{"mtry": 0, "trees": 10, "min_n": 5}},
		{"min_n too small", map[string]float64{"mtry": 1, "trees": 10, "min_n": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRandomForest().Train(x, y, 2, tt.params, 1); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
