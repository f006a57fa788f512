package classifier

import (
	"math/rand"
	"sort"
)

// Single CART classification tree with Gini impurity. Splits sample
// mtry candidate features; leaves keep the class distribution so the
// forest can average probabilities.

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	proba     []float64 // set on leaves only
}

type treeParams struct {
	mtry     int
	minSplit int
	nClasses int
}

func growTree(x [][]float64, y []int, rows []int, p treeParams, rng *rand.Rand) *treeNode {
	counts := make([]float64, p.nClasses)
	for _, r := range rows {
		counts[y[r]]++
	}
	if len(rows) < p.minSplit || isPure(counts) {
		return leafNode(counts, len(rows))
	}

	feature, threshold, ok := bestSplit(x, y, rows, p, rng)
	if !ok {
		return leafNode(counts, len(rows))
	}

	var left, right []int
	for _, r := range rows {
		if x[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return leafNode(counts, len(rows))
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(x, y, left, p, rng),
		right:     growTree(x, y, right, p, rng),
	}
}

func leafNode(counts []float64, n int) *treeNode {
	proba := make([]float64, len(counts))
	for c, v := range counts {
		proba[c] = v / float64(n)
	}
	return &treeNode{proba: proba}
}

func isPure(counts []float64) bool {
	nonZero := 0
	for _, v := range counts {
		if v > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

// bestSplit scans mtry randomly chosen features for the lowest weighted
// Gini impurity, trying midpoints between consecutive distinct values.
func bestSplit(x [][]float64, y []int, rows []int, p treeParams, rng *rand.Rand) (feature int, threshold float64, ok bool) {
	nFeatures := len(x[rows[0]])
	mtry := p.mtry
	if mtry > nFeatures {
		mtry = nFeatures
	}
	candidates := rng.Perm(nFeatures)[:mtry]

	bestGini := 2.0 // above any reachable impurity
	for _, f := range candidates {
		values := make([]float64, len(rows))
		for i, r := range rows {
			values[i] = x[r][f]
		}
		thresholds := splitPoints(values)
		for _, th := range thresholds {
			g, valid := weightedGini(x, y, rows, f, th, p.nClasses)
			if valid && g < bestGini {
				bestGini = g
				feature = f
				threshold = th
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// splitPoints returns midpoints between consecutive distinct sorted
// values, capped to keep large nodes cheap.
func splitPoints(values []float64) []float64 {
	const maxPoints = 16

	seen := make(map[float64]struct{}, len(values))
	var distinct []float64
	for _, v := range values {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			distinct = append(distinct, v)
		}
	}
	if len(distinct) < 2 {
		return nil
	}
	sort.Float64s(distinct)

	points := make([]float64, 0, len(distinct)-1)
	for i := 1; i < len(distinct); i++ {
		points = append(points, (distinct[i-1]+distinct[i])/2)
	}
	if len(points) > maxPoints {
		stride := len(points) / maxPoints
		sampled := make([]float64, 0, maxPoints)
		for i := 0; i < len(points); i += stride {
			sampled = append(sampled, points[i])
		}
		points = sampled
	}
	return points
}

func weightedGini(x [][]float64, y []int, rows []int, feature int, threshold float64, nClasses int) (float64, bool) {
	leftCounts := make([]float64, nClasses)
	rightCounts := make([]float64, nClasses)
	var nLeft, nRight float64
	for _, r := range rows {
		if x[r][feature] <= threshold {
			leftCounts[y[r]]++
			nLeft++
		} else {
			rightCounts[y[r]]++
			nRight++
		}
	}
	if nLeft == 0 || nRight == 0 {
		return 0, false
	}
	n := nLeft + nRight
	return nLeft/n*gini(leftCounts, nLeft) + nRight/n*gini(rightCounts, nRight), true
}

func gini(counts []float64, n float64) float64 {
	g := 1.0
	for _, c := range counts {
		p := c / n
		g -= p * p
	}
	return g
}

func (t *treeNode) predictRow(row []float64) []float64 {
	node := t
	for node.proba == nil {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.proba
}
