package tuning

import (
	"context"
	"math"
	"math/rand"
	"reflect"
	"strconv"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/classifier"
	"github.com/openchess/tuner-api/internal/dataset"
	"github.com/openchess/tuner-api/internal/models"
	"github.com/openchess/tuner-api/internal/recipe"
)

func testLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

func testSpec() recipe.Spec {
	return recipe.Spec{Numeric: []string{"x1", "x2"}, Categorical: []string{"grp"}}
}

// syntheticTable builds a learnable three-class problem: x1 clusters at
// -5, 0 and +5 per outcome, x2 is noise, grp is an uninformative group.
func syntheticTable(t *testing.T, n int, seed int64) *dataset.Table {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	outcomes := []string{"black", "draw", "white"}
	centers := []float64{-5, 0, 5}

	x1 := make([]float64, n)
	x2 := make([]float64, n)
	grp := make([]string, n)
	result := make([]string, n)
	for i := 0; i < n; i++ {
		c := i % len(outcomes)
		x1[i] = centers[c] + rng.NormFloat64()
		x2[i] = rng.NormFloat64()
		grp[i] = "g" + strconv.Itoa(i%2)
		result[i] = outcomes[c]
	}

	table, err := dataset.NewTable(
		map[string][]float64{"x1": x1, "x2": x2},
		map[string][]string{"grp": grp, "result": result},
	)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

func TestSearchDeterministic(t *testing.T) {
	table := syntheticTable(t, 90, 3)
	folds, err := dataset.StratifiedKFold(table, "result", 3, 42)
	if err != nil {
		t.Fatalf("folds: %v", err)
	}

	run := func() map[string]*models.TuningResult {
		e := &Executor{
			Families: []classifier.Family{classifier.NewKNN()},
			Spec:     testSpec(),
			Response: "result",
			Workers:  4,
			Seed:     42,
			Logger:   testLogger(),
		}
		results, err := e.Search(context.Background(), table, folds)
		if err != nil {
			t.Fatalf("search: %v", err)
		}
		return results
	}

	if !reflect.DeepEqual(run(), run()) {
		t.Error("identical seeds produced different tuning tables")
	}
}

func TestSearchDegenerateFoldIsolated(t *testing.T) {
	// All "draw" rows land in fold 1, so folds 2 and 3 validate without
	// that class and must be recorded as missing observations.
	table := syntheticTable(t, 60, 5)
	labels, err := table.Categorical("result")
	if err != nil {
		t.Fatalf("labels: %v", err)
	}
	folds := &dataset.FoldAssignment{K: 3, Fold: make([]int, table.Len())}
	next := 0
	for i, l := range labels {
		if l == "draw" {
			folds.Fold[i] = 1
		} else {
			folds.Fold[i] = next%3 + 1
			next++
		}
	}

	e := &Executor{
		Families: []classifier.Family{classifier.NewKNN()},
		Spec:     testSpec(),
		Response: "result",
		Workers:  2,
		Seed:     5,
		Logger:   testLogger(),
	}
	results, err := e.Search(context.Background(), table, folds)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	for _, entry := range results["knn"].Entries {
		if entry.Folds != 1 {
			t.Errorf("config %s scored %d folds, want exactly 1", entry.Config.Key(), entry.Folds)
		}
		if !entry.Defined() {
			t.Errorf("config %s should remain defined from fold 1", entry.Config.Key())
		}
	}
}

func TestRankEntries(t *testing.T) {
	entry := func(mean, std float64, folds int, k float64) models.TuningEntry {
		return models.TuningEntry{
			Config: models.ModelConfig{Family: "knn", Params: map[string]float64{"neighbors": k}},
			Mean:   mean, StdDev: std, Folds: folds,
		}
	}

	entries := []models.TuningEntry{
		entry(0, 0, 0, 9),      // undefined, ranks last
		entry(0.8, 0.1, 5, 3),  // same mean, higher stddev
		entry(0.8, 0.05, 5, 7), // same mean/stddev as next, larger param
		entry(0.8, 0.05, 5, 2), // best: simplicity tiebreak
		entry(0.9, 0.2, 5, 5),  // highest mean wins outright
	}
	RankEntries(entries, []string{"neighbors"})

	wantNeighbors := []float64{5, 2, 7, 3, 9}
	for i, want := range wantNeighbors {
		if got := entries[i].Config.Params["neighbors"]; got != want {
			t.Errorf("rank %d: neighbors = %v, want %v", i, got, want)
		}
	}
	if entries[4].Defined() {
		t.Error("undefined entry should rank last")
	}
}

func TestSelectBest(t *testing.T) {
	families := []classifier.Family{classifier.NewKNN(), classifier.NewMultinomial()}
	results := map[string]*models.TuningResult{
		"knn": {Family: "knn", Entries: []models.TuningEntry{{
			Config: models.ModelConfig{Family: "knn", Params: map[string]float64{"neighbors": 5}},
			Mean:   0.72, Folds: 5,
		}}},
		"multinom": {Family: "multinom", Entries: []models.TuningEntry{{
			Config: models.ModelConfig{Family: "multinom", Params: map[string]float64{"penalty": 0}},
			Mean:   0.81, Folds: 5,
		}}},
	}

	best, err := SelectBest(results, families)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if best.Config.Family != "multinom" {
		t.Errorf("best family = %q, want multinom", best.Config.Family)
	}

	empty := map[string]*models.TuningResult{
		"knn": {Family: "knn", Entries: []models.TuningEntry{{
			Config: models.ModelConfig{Family: "knn", Params: map[string]float64{"neighbors": 1}},
		}}},
	}
	if _, err := SelectBest(empty, families); err == nil {
		t.Error("expected error when no entry has a defined metric")
	}
}

func TestFinalizerStateMachine(t *testing.T) {
	table := syntheticTable(t, 90, 7)

	f := &Finalizer{
		Family:   classifier.NewKNN(),
		Params:   map[string]float64{"neighbors": 5},
		Spec:     testSpec(),
		Response: "result",
		Seed:     7,
		Logger:   testLogger(),
	}

	if _, err := f.Evaluate(table); err == nil {
		t.Error("Evaluate before Fit should fail")
	}
	if _, err := f.RecipeChecksum(); err == nil {
		t.Error("RecipeChecksum before Fit should fail")
	}

	if err := f.Fit(table); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if err := f.Fit(table); err == nil {
		t.Error("second Fit should fail")
	}

	before, err := f.RecipeChecksum()
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}

	report, err := f.Evaluate(table)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if report.HeldOutAUC < 0.9 {
		t.Errorf("held-out AUC = %v on separable data", report.HeldOutAUC)
	}
	if report.TestSize != table.Len() {
		t.Errorf("test size = %d, want %d", report.TestSize, table.Len())
	}

	after, err := f.RecipeChecksum()
	if err != nil {
		t.Fatalf("checksum: %v", err)
	}
	if before != after {
		t.Error("recipe checksum changed across Evaluate")
	}

	if _, err := f.Evaluate(table); err == nil {
		t.Error("second Evaluate should fail")
	}
}

func TestPipelineRun(t *testing.T) {
	table := syntheticTable(t, 240, 11)

	p := &Pipeline{
		Families:        []classifier.Family{classifier.NewKNN()},
		Spec:            testSpec(),
		Response:        "result",
		SplitStratify:   "result",
		FoldStratify:    "result",
		TrainProportion: 0.8,
		Folds:           3,
		Seed:            11,
		Workers:         4,
		Logger:          testLogger(),
	}
	res, err := p.Run(context.Background(), table)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Best.Config.Family != "knn" {
		t.Errorf("best family = %q", res.Best.Config.Family)
	}
	if got := len(res.Tuning["knn"].Entries); got != 10 {
		t.Errorf("knn table has %d entries, want 10", got)
	}
	if res.Report.HeldOutAUC < 0.9 {
		t.Errorf("held-out AUC = %v on separable data", res.Report.HeldOutAUC)
	}
	if len(res.Report.Classes) != 3 {
		t.Fatalf("classes = %v, want 3", res.Report.Classes)
	}
	for i, row := range res.Report.Probabilities {
		var sum float64
		for _, p := range row {
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("probability row %d sums to %v", i, sum)
		}
	}
}

// memCheckpoint records saves so tests can prove cached families skip
// recomputation.
type memCheckpoint struct {
	mu    sync.Mutex
	data  map[string]*models.TuningResult
	saves int
	loads int
}

func newMemCheckpoint() *memCheckpoint {
	return &memCheckpoint{data: make(map[string]*models.TuningResult)}
}

func (m *memCheckpoint) Load(_ context.Context, key, family string) (*models.TuningResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	return m.data[key+"/"+family], nil
}

func (m *memCheckpoint) Save(_ context.Context, key, family string, result *models.TuningResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.data[key+"/"+family] = result
	return nil
}

func TestSearchResumesFromCheckpoint(t *testing.T) {
	table := syntheticTable(t, 90, 13)
	folds, err := dataset.StratifiedKFold(table, "result", 3, 13)
	if err != nil {
		t.Fatalf("folds: %v", err)
	}

	store := newMemCheckpoint()
	mk := func() *Executor {
		return &Executor{
			Families:      []classifier.Family{classifier.NewKNN()},
			Spec:          testSpec(),
			Response:      "result",
			Workers:       2,
			Seed:          13,
			Logger:        testLogger(),
			Checkpoints:   store,
			CheckpointKey: "test-key",
		}
	}

	first, err := mk().Search(context.Background(), table, folds)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	if store.saves != 1 {
		t.Fatalf("saves = %d after first search, want 1", store.saves)
	}

	second, err := mk().Search(context.Background(), table, folds)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d after resumed search, want 1", store.saves)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("resumed search disagrees with the original")
	}
}

func TestCheckpointKey(t *testing.T) {
	families := []classifier.Family{classifier.NewKNN()}
	spec := testSpec()

	base := CheckpointKey("v1", spec, families, 5, 42)
	tests := []struct {
		name string
		key  string
	}{
		{"dataset version", CheckpointKey("v2", spec, families, 5, 42)},
		{"fold count", CheckpointKey("v1", spec, families, 10, 42)},
		{"seed", CheckpointKey("v1", spec, families, 5, 43)},
		{"families", CheckpointKey("v1", spec, append(families, classifier.NewMultinomial()), 5, 42)},
	}
	for _, tt := range tests {
		if tt.key == base {
			t.Errorf("changing %s did not change the checkpoint key", tt.name)
		}
	}
	if again := CheckpointKey("v1", spec, families, 5, 42); again != base {
		t.Error("identical inputs produced different keys")
	}
}
