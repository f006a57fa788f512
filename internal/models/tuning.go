package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ModelConfig identifies one candidate: a classifier family plus a
// concrete hyperparameter assignment. Immutable once built.
type ModelConfig struct {
	Family string             `json:"family"`
	Params map[string]float64 `json:"params"`
}

// Key returns a stable identifier for the config, with parameters in
// sorted order so equal configs always produce equal keys.
func (c ModelConfig) Key() string {
	names := make([]string, 0, len(c.Params))
	for name := range c.Params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString(c.Family)
	for _, name := range names {
		fmt.Fprintf(&sb, "|%s=%g", name, c.Params[name])
	}
	return sb.String()
}

// TuningEntry is the cross-validated summary for one config.
// Folds counts the folds that scored successfully; when it is zero the
// mean is undefined and the entry ranks last.
type TuningEntry struct {
	Config ModelConfig `json:"config"`
	Mean   float64     `json:"mean"`
	StdDev float64     `json:"std_dev"`
	Folds  int         `json:"folds"`
}

// Defined reports whether the entry has at least one scored fold.
func (e TuningEntry) Defined() bool { return e.Folds > 0 }

// TuningResult is the per-family table produced by a grid search,
// ordered best-first.
type TuningResult struct {
	Family  string        `json:"family"`
	Entries []TuningEntry `json:"entries"`
}

// Best returns the top-ranked entry of the table.
func (r *TuningResult) Best() (TuningEntry, bool) {
	if r == nil || len(r.Entries) == 0 {
		return TuningEntry{}, false
	}
	return r.Entries[0], true
}

// FinalReport is the outcome of the single held-out evaluation at the
// end of a run.
type FinalReport struct {
	RunID         uuid.UUID   `json:"run_id"`
	Config        ModelConfig `json:"config"`
	HeldOutAUC    float64     `json:"held_out_auc"`
	Classes       []string    `json:"classes"`
	Probabilities [][]float64 `json:"probabilities"` // one row per test record, ordered as Classes
	TestSize      int         `json:"test_size"`
	CreatedAt     time.Time   `json:"created_at"`
}
