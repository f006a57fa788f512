// Package tuning runs the model-selection core: stratified
// cross-validated grid search over every registered classifier family,
// metric aggregation and ranking, and the single final held-out
// evaluation.
package tuning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openchess/tuner-api/internal/classifier"
	"github.com/openchess/tuner-api/internal/dataset"
	"github.com/openchess/tuner-api/internal/metric"
	"github.com/openchess/tuner-api/internal/models"
	"github.com/openchess/tuner-api/internal/recipe"
)

// Prometheus metrics
var (
	cellsEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuner_cells_evaluated_total",
		Help: "Grid-search cells scored successfully, by family",
	}, []string{"family"})

	cellsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuner_cells_failed_total",
		Help: "Grid-search cells recorded as missing observations, by family and reason",
	}, []string{"family", "reason"})

	cellDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tuner_cell_duration_seconds",
		Help:    "Duration of one (config, fold) cell",
		Buckets: prometheus.DefBuckets,
	})

	cellsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tuner_cells_in_flight",
		Help: "Cells currently executing",
	})
)

// Executor runs every (config, fold) cell of every family. Cells are
// pure functions of their inputs and share no mutable state; the only
// coordination point is the append-only result collector.
type Executor struct {
	Families      []classifier.Family
	Spec          recipe.Spec
	Response      string
	Workers       int
	Seed          int64
	Logger        *zap.SugaredLogger
	Checkpoints   CheckpointStore
	CheckpointKey string
}

// collector gathers per-cell scores keyed by (config, fold).
// Append-only behind a mutex; aggregation reads it only after every
// cell of the family has finished.
type collector struct {
	mu     sync.Mutex
	scores [][]float64 // configIdx x fold, NaN-free: ok flags mark presence
	ok     [][]bool
}

func newCollector(nConfigs, k int) *collector {
	c := &collector{
		scores: make([][]float64, nConfigs),
		ok:     make([][]bool, nConfigs),
	}
	for i := range c.scores {
		c.scores[i] = make([]float64, k)
		c.ok[i] = make([]bool, k)
	}
	return c
}

func (c *collector) record(configIdx, fold int, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores[configIdx][fold-1] = score
	c.ok[configIdx][fold-1] = true
}

// Search cross-validates every family's grid on the training table and
// returns one ranked TuningResult per family. Identical seed, fold
// assignment and grid enumeration order reproduce identical tables.
func (e *Executor) Search(ctx context.Context, train *dataset.Table, folds *dataset.FoldAssignment) (map[string]*models.TuningResult, error) {
	classes, err := dataset.Classes(train, e.Response)
	if err != nil {
		return nil, err
	}
	labels, err := train.Categorical(e.Response)
	if err != nil {
		return nil, err
	}
	y, err := dataset.EncodeLabels(labels, classes)
	if err != nil {
		return nil, err
	}

	checkpoints := e.Checkpoints
	if checkpoints == nil {
		checkpoints = NopCheckpoint{}
	}

	results := make(map[string]*models.TuningResult, len(e.Families))
	for _, family := range e.Families {
		if cached, err := checkpoints.Load(ctx, e.CheckpointKey, family.Name()); err != nil {
			e.Logger.Warnw("Checkpoint load failed, recomputing family", "family", family.Name(), "error", err)
		} else if cached != nil {
			e.Logger.Infow("Family restored from checkpoint", "family", family.Name(), "configs", len(cached.Entries))
			results[family.Name()] = cached
			continue
		}

		result, err := e.searchFamily(ctx, family, train, y, len(classes), folds)
		if err != nil {
			return nil, err
		}
		results[family.Name()] = result

		if err := checkpoints.Save(ctx, e.CheckpointKey, family.Name(), result); err != nil {
			e.Logger.Warnw("Checkpoint save failed", "family", family.Name(), "error", err)
		}
	}
	return results, nil
}

func (e *Executor) searchFamily(ctx context.Context, family classifier.Family, train *dataset.Table, y []int, nClasses int, folds *dataset.FoldAssignment) (*models.TuningResult, error) {
	configs := classifier.CrossProduct(family.Grid())
	coll := newCollector(len(configs), folds.K)

	e.Logger.Infow("Searching family",
		"family", family.Name(),
		"configs", len(configs),
		"folds", folds.K,
		"workers", e.Workers,
	)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	workers := e.Workers
	if workers <= 0 {
		workers = 4
	}
	g.SetLimit(workers)

	for configIdx := range configs {
		for fold := 1; fold <= folds.K; fold++ {
			configIdx, fold := configIdx, fold
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return e.evalCell(family, configs[configIdx], configIdx, fold, train, y, nClasses, folds, coll)
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Aggregation barrier: every cell of the family has reported.
	result := aggregateFamily(family, configs, coll, folds.K)
	best, _ := result.Best()
	e.Logger.Infow("Family searched",
		"family", family.Name(),
		"bestMean", best.Mean,
		"bestFolds", best.Folds,
		"duration", time.Since(start),
	)
	return result, nil
}

// evalCell runs one (config, fold) cell: leakage-safe recipe fit on the
// fold-train subset, model training, and validation scoring.
// Recoverable failures are logged and left as missing observations;
// only data-level problems propagate.
func (e *Executor) evalCell(family classifier.Family, params map[string]float64, configIdx, fold int, train *dataset.Table, y []int, nClasses int, folds *dataset.FoldAssignment, coll *collector) error {
	cellsInFlight.Inc()
	defer cellsInFlight.Dec()
	start := time.Now()
	defer func() { cellDuration.Observe(time.Since(start).Seconds()) }()

	config := models.ModelConfig{Family: family.Name(), Params: params}

	trainIdx, valIdx := folds.Split(fold)
	foldTrain, err := train.Subset(trainIdx)
	if err != nil {
		return err
	}
	foldVal, err := train.Subset(valIdx)
	if err != nil {
		return err
	}

	// Fresh state per cell; a zero-variance predictor here signals a
	// data problem, not a fold artifact, so it is fatal.
	state, err := recipe.Fit(foldTrain, e.Spec)
	if err != nil {
		return fmt.Errorf("fold %d recipe fit: %w", fold, err)
	}
	xTrain, err := state.Apply(foldTrain)
	if err != nil {
		return err
	}
	xVal, err := state.Apply(foldVal)
	if err != nil {
		return err
	}

	yTrain := make([]int, len(trainIdx))
	for i, r := range trainIdx {
		yTrain[i] = y[r]
	}
	yVal := make([]int, len(valIdx))
	for i, r := range valIdx {
		yVal[i] = y[r]
	}

	model, err := family.Train(xTrain, yTrain, nClasses, params, e.cellSeed(configIdx, fold))
	if err != nil {
		trainErr := &ModelTrainingError{Config: config, Fold: fold, Cause: err}
		e.Logger.Warnw("Cell training failed", "family", family.Name(), "config", config.Key(), "fold", fold, "error", trainErr)
		cellsFailed.WithLabelValues(family.Name(), "training").Inc()
		return nil
	}

	score, err := metric.MacroOVRAUC(yVal, model.PredictProba(xVal), nClasses)
	if err != nil {
		if errors.Is(err, metric.ErrClassAbsent) {
			foldErr := &DegenerateFoldError{Config: config, Fold: fold, Cause: err}
			e.Logger.Warnw("Cell skipped, class absent from validation fold", "family", family.Name(), "config", config.Key(), "fold", fold, "error", foldErr)
			cellsFailed.WithLabelValues(family.Name(), "degenerate_fold").Inc()
			return nil
		}
		return fmt.Errorf("fold %d scoring: %w", fold, err)
	}

	coll.record(configIdx, fold, score)
	cellsEvaluated.WithLabelValues(family.Name()).Inc()
	return nil
}

// cellSeed derives a per-cell seed so model-training randomness is
// reproducible and independent of scheduling.
func (e *Executor) cellSeed(configIdx, fold int) int64 {
	return e.Seed + int64(configIdx)*1000 + int64(fold)
}
