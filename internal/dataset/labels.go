package dataset

import (
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// EncodeLabels maps a categorical response column to integer class ids
// with classes in alphabetical order, so the id assignment is identical
// across every subset of the same dataset.
func EncodeLabels(values []string, classes []string) ([]int, error) {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	y := make([]int, len(values))
	for i, v := range values {
		id, ok := index[v]
		if !ok {
			return nil, &ConfigError{Reason: fmt.Sprintf("unknown class %q at row %d", v, i)}
		}
		y[i] = id
	}
	return y, nil
}

// Classes returns the distinct values of a categorical column in
// alphabetical order.
func Classes(t *Table, column string) ([]string, error) {
	col, err := t.Categorical(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var classes []string
	for _, v := range col {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	sort.Strings(classes)
	return classes, nil
}

// Version fingerprints the table contents. Checkpoints keyed by this
// hash invalidate whenever any cell of the dataset changes.
func Version(t *Table) string {
	h := xxhash.New()
	for _, name := range t.NumericNames() {
		col, _ := t.Numeric(name)
		h.WriteString(name)
		for _, v := range col {
			fmt.Fprintf(h, "|%g", v)
		}
	}
	for _, name := range t.CategoricalNames() {
		col, _ := t.Categorical(name)
		h.WriteString(name)
		for _, v := range col {
			h.WriteString("|" + v)
		}
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
