package classifier

import (
	"errors"
	"math"
	"math/rand"
)

// Softmax regression shared by the plain multinomial family and the
// elastic-net family; they differ only in which penalty settings the
// grid supplies.

const (
	multinomEpochs = 250
	multinomLR     = 0.1
)

// Multinomial is the unpenalized multinomial classifier. Single,
// untuned config: the grid pins penalty and mixture to zero.
type Multinomial struct{}

func NewMultinomial() *Multinomial { return &Multinomial{} }

func (*Multinomial) Name() string { return "multinom" }

func (*Multinomial) Grid() []ParamSpec {
	return []ParamSpec{
		{Name: "penalty", Values: []float64{0}},
	}
}

func (*Multinomial) Train(x [][]float64, y []int, nClasses int, params map[string]float64, seed int64) (Model, error) {
	return trainSoftmax(x, y, nClasses, 0, 0, seed)
}

// ElasticNet is the penalized multinomial family: penalty strength
// crossed with the L1/L2 mixing proportion.
type ElasticNet struct{}

func NewElasticNet() *ElasticNet { return &ElasticNet{} }

func (*ElasticNet) Name() string { return "glmnet" }

func (*ElasticNet) Grid() []ParamSpec {
	return []ParamSpec{
		{Name: "penalty", Values: Logspace(-4, 0, 10)},
		{Name: "mixture", Values: Linspace(0, 1, 10)},
	}
}

func (*ElasticNet) Train(x [][]float64, y []int, nClasses int, params map[string]float64, seed int64) (Model, error) {
	return trainSoftmax(x, y, nClasses, params["penalty"], params["mixture"], seed)
}

type softmaxModel struct {
	w        [][]float64 // nClasses x d
	b        []float64
	nClasses int
}

// trainSoftmax fits by full-batch gradient descent. penalty is the
// regularization strength, mixture the L1 share (0 = ridge, 1 = lasso).
func trainSoftmax(x [][]float64, y []int, nClasses int, penalty, mixture float64, seed int64) (*softmaxModel, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("multinom: feature rows and labels must match and be non-empty")
	}
	if penalty < 0 || mixture < 0 || mixture > 1 {
		return nil, errors.New("multinom: penalty must be >= 0 and mixture within [0,1]")
	}
	n := len(x)
	d := len(x[0])

	rng := rand.New(rand.NewSource(seed))
	m := &softmaxModel{nClasses: nClasses, b: make([]float64, nClasses)}
	m.w = make([][]float64, nClasses)
	for c := range m.w {
		m.w[c] = make([]float64, d)
		for j := range m.w[c] {
			m.w[c][j] = rng.NormFloat64() * 0.01
		}
	}

	gw := make([][]float64, nClasses)
	for c := range gw {
		gw[c] = make([]float64, d)
	}
	gb := make([]float64, nClasses)

	for epoch := 0; epoch < multinomEpochs; epoch++ {
		for c := range gw {
			for j := range gw[c] {
				gw[c][j] = 0
			}
			gb[c] = 0
		}

		for i, row := range x {
			p := m.probaRow(row)
			for c := 0; c < nClasses; c++ {
				delta := p[c]
				if y[i] == c {
					delta -= 1
				}
				for j, v := range row {
					gw[c][j] += delta * v
				}
				gb[c] += delta
			}
		}

		inv := 1 / float64(n)
		for c := 0; c < nClasses; c++ {
			for j := 0; j < d; j++ {
				g := gw[c][j] * inv
				if penalty > 0 {
					g += penalty * ((1-mixture)*m.w[c][j] + mixture*sign(m.w[c][j]))
				}
				m.w[c][j] -= multinomLR * g
			}
			m.b[c] -= multinomLR * gb[c] * inv
		}
	}
	return m, nil
}

func (m *softmaxModel) PredictProba(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = m.probaRow(row)
	}
	return out
}

func (m *softmaxModel) probaRow(row []float64) []float64 {
	logits := make([]float64, m.nClasses)
	maxLogit := math.Inf(-1)
	for c := 0; c < m.nClasses; c++ {
		sum := m.b[c]
		for j, v := range row {
			sum += m.w[c][j] * v
		}
		logits[c] = sum
		if sum > maxLogit {
			maxLogit = sum
		}
	}
	var z float64
	for c, l := range logits {
		logits[c] = math.Exp(l - maxLogit)
		z += logits[c]
	}
	for c := range logits {
		logits[c] /= z
	}
	return logits
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
