package tuning

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/classifier"
	"github.com/openchess/tuner-api/internal/dataset"
	"github.com/openchess/tuner-api/internal/models"
	"github.com/openchess/tuner-api/internal/recipe"
)

// Pipeline wires the stages together: stratified partition, stratified
// folds, grid search, cross-family selection, final evaluation. Every
// stage output is an immutable value handed to the next stage.
type Pipeline struct {
	Families        []classifier.Family
	Spec            recipe.Spec
	Response        string
	SplitStratify   string
	FoldStratify    string
	TrainProportion float64
	Folds           int
	Seed            int64
	Workers         int
	Logger          *zap.SugaredLogger
	Checkpoints     CheckpointStore
}

// RunResult carries every artifact of one run.
type RunResult struct {
	Tuning map[string]*models.TuningResult
	Best   models.TuningEntry
	Report *models.FinalReport
}

// Run executes the whole selection pipeline on one materialized table.
// The test partition is read exactly once, by the final evaluation.
func (p *Pipeline) Run(ctx context.Context, table *dataset.Table) (*RunResult, error) {
	start := time.Now()
	part, err := dataset.StratifiedSplit(table, p.SplitStratify, p.TrainProportion, p.Seed)
	if err != nil {
		return nil, err
	}
	train, err := table.Subset(part.TrainIdx)
	if err != nil {
		return nil, err
	}
	p.Logger.Infow("Dataset partitioned",
		"rows", table.Len(),
		"train", len(part.TrainIdx),
		"test", len(part.TestIdx),
		"stratify", p.SplitStratify,
	)

	folds, err := dataset.StratifiedKFold(train, p.FoldStratify, p.Folds, p.Seed)
	if err != nil {
		return nil, err
	}

	executor := &Executor{
		Families:      p.Families,
		Spec:          p.Spec,
		Response:      p.Response,
		Workers:       p.Workers,
		Seed:          p.Seed,
		Logger:        p.Logger,
		Checkpoints:   p.Checkpoints,
		CheckpointKey: CheckpointKey(dataset.Version(table), p.Spec, p.Families, p.Folds, p.Seed),
	}
	results, err := executor.Search(ctx, train, folds)
	if err != nil {
		return nil, err
	}

	best, err := SelectBest(results, p.Families)
	if err != nil {
		return nil, err
	}
	p.Logger.Infow("Best config selected",
		"family", best.Config.Family,
		"config", best.Config.Key(),
		"mean", best.Mean,
		"stdDev", best.StdDev,
	)

	finalizer := &Finalizer{
		Family:   familyByName(p.Families, best.Config.Family),
		Params:   best.Config.Params,
		Spec:     p.Spec,
		Response: p.Response,
		Seed:     p.Seed,
		Logger:   p.Logger,
	}
	if err := finalizer.Fit(train); err != nil {
		return nil, err
	}

	// First and only read of the test partition in the entire run.
	test, err := table.Subset(part.TestIdx)
	if err != nil {
		return nil, err
	}
	report, err := finalizer.Evaluate(test)
	if err != nil {
		return nil, err
	}

	p.Logger.Infow("Run complete", "duration", time.Since(start), "heldOutAUC", report.HeldOutAUC)
	return &RunResult{Tuning: results, Best: best, Report: report}, nil
}

func familyByName(families []classifier.Family, name string) classifier.Family {
	for _, f := range families {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// GamesSpec is the standard recipe for the games table: standardized
// numeric predictors plus a dummy-encoded ECO group.
func GamesSpec() recipe.Spec {
	return recipe.Spec{
		Numeric:     []string{models.ColTurns, models.ColWhiteRating, models.ColBlackRating, models.ColOpeningPly},
		Categorical: []string{models.ColOpeningECO},
	}
}
