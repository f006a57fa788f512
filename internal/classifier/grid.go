package classifier

import "math"

// ParamSpec is one tunable hyperparameter: a name and its enumerated
// candidate values.
type ParamSpec struct {
	Name   string
	Values []float64
}

// CrossProduct enumerates the full grid. The first spec varies slowest,
// so enumeration order is stable for a given registry.
func CrossProduct(specs []ParamSpec) []map[string]float64 {
	if len(specs) == 0 {
		return []map[string]float64{{}}
	}
	total := 1
	for _, s := range specs {
		total *= len(s.Values)
	}
	out := make([]map[string]float64, 0, total)

	idx := make([]int, len(specs))
	for {
		params := make(map[string]float64, len(specs))
		for i, s := range specs {
			params[s.Name] = s.Values[idx[i]]
		}
		out = append(out, params)

		// Advance the mixed-radix counter, last position fastest.
		i := len(specs) - 1
		for i >= 0 {
			idx[i]++
			if idx[i] < len(specs[i].Values) {
				break
			}
			idx[i] = 0
			i--
		}
		if i < 0 {
			return out
		}
	}
}

// Linspace returns n evenly spaced values over [lo, hi] inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// LinspaceInt rounds an even spacing over [lo, hi] to integers; levels
// may repeat when the range holds fewer than n integers.
func LinspaceInt(lo, hi, n int) []float64 {
	raw := Linspace(float64(lo), float64(hi), n)
	for i, v := range raw {
		raw[i] = math.Round(v)
	}
	return raw
}

// Logspace returns n log-spaced values over [10^loExp, 10^hiExp].
func Logspace(loExp, hiExp float64, n int) []float64 {
	exps := Linspace(loExp, hiExp, n)
	out := make([]float64, n)
	for i, e := range exps {
		out[i] = math.Pow(10, e)
	}
	return out
}
