// Package dataset holds the column-oriented table the pipeline runs on,
// plus the stratified partitioner and fold generator. Tables are
// immutable after construction; every stage that needs a different view
// builds a fresh one via Subset.
package dataset

import (
	"fmt"
	"sort"

	"github.com/openchess/tuner-api/internal/models"
)

// Table is an immutable column-oriented dataset. Column order is fixed
// at construction and preserved by Subset.
type Table struct {
	numericNames     []string
	categoricalNames []string
	numeric          map[string][]float64
	categorical      map[string][]string
	rows             int
}

// NewTable validates column lengths and builds a table. Every column
// must be non-empty and all columns must agree on the row count.
func NewTable(numeric map[string][]float64, categorical map[string][]string) (*Table, error) {
	t := &Table{
		numeric:     make(map[string][]float64, len(numeric)),
		categorical: make(map[string][]string, len(categorical)),
		rows:        -1,
	}

	for name, col := range numeric {
		if err := t.checkLen(name, len(col)); err != nil {
			return nil, err
		}
		t.numeric[name] = col
		t.numericNames = append(t.numericNames, name)
	}
	for name, col := range categorical {
		if err := t.checkLen(name, len(col)); err != nil {
			return nil, err
		}
		for i, v := range col {
			if v == "" {
				return nil, &ConfigError{Reason: fmt.Sprintf("column %q has an empty value at row %d", name, i)}
			}
		}
		t.categorical[name] = col
		t.categoricalNames = append(t.categoricalNames, name)
	}

	if t.rows <= 0 {
		return nil, &ConfigError{Reason: "table has no rows"}
	}
	sort.Strings(t.numericNames)
	sort.Strings(t.categoricalNames)
	return t, nil
}

func (t *Table) checkLen(name string, n int) error {
	if n == 0 {
		return &ConfigError{Reason: fmt.Sprintf("column %q is empty", name)}
	}
	if t.rows == -1 {
		t.rows = n
		return nil
	}
	if n != t.rows {
		return &ConfigError{Reason: fmt.Sprintf("column %q has %d rows, expected %d", name, n, t.rows)}
	}
	return nil
}

// FromGames builds the standard games table used throughout the run.
func FromGames(games []models.GameRecord) (*Table, error) {
	n := len(games)
	turns := make([]float64, n)
	white := make([]float64, n)
	black := make([]float64, n)
	ply := make([]float64, n)
	eco := make([]string, n)
	winner := make([]string, n)

	for i, g := range games {
		turns[i] = float64(g.Turns)
		white[i] = float64(g.WhiteRating)
		black[i] = float64(g.BlackRating)
		ply[i] = float64(g.OpeningPly)
		eco[i] = g.OpeningECO
		winner[i] = g.Winner
	}

	return NewTable(
		map[string][]float64{
			models.ColTurns:       turns,
			models.ColWhiteRating: white,
			models.ColBlackRating: black,
			models.ColOpeningPly:  ply,
		},
		map[string][]string{
			models.ColOpeningECO: eco,
			models.ColWinner:     winner,
		},
	)
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// NumericNames returns the numeric column names in stable order.
func (t *Table) NumericNames() []string { return t.numericNames }

// CategoricalNames returns the categorical column names in stable order.
func (t *Table) CategoricalNames() []string { return t.categoricalNames }

// Numeric returns a numeric column by name. The returned slice must be
// treated as read-only.
func (t *Table) Numeric(name string) ([]float64, error) {
	col, ok := t.numeric[name]
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown numeric column %q", name)}
	}
	return col, nil
}

// Categorical returns a categorical column by name. The returned slice
// must be treated as read-only.
func (t *Table) Categorical(name string) ([]string, error) {
	col, ok := t.categorical[name]
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("unknown categorical column %q", name)}
	}
	return col, nil
}

// Subset builds a new table containing the given rows, in order.
func (t *Table) Subset(idx []int) (*Table, error) {
	if len(idx) == 0 {
		return nil, &ConfigError{Reason: "empty row selection"}
	}
	numeric := make(map[string][]float64, len(t.numeric))
	for name, col := range t.numeric {
		sub := make([]float64, len(idx))
		for i, r := range idx {
			if r < 0 || r >= t.rows {
				return nil, &ConfigError{Reason: fmt.Sprintf("row index %d out of range", r)}
			}
			sub[i] = col[r]
		}
		numeric[name] = sub
	}
	categorical := make(map[string][]string, len(t.categorical))
	for name, col := range t.categorical {
		sub := make([]string, len(idx))
		for i, r := range idx {
			sub[i] = col[r]
		}
		categorical[name] = sub
	}
	return NewTable(numeric, categorical)
}
