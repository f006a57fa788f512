package tuning

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/classifier"
	"github.com/openchess/tuner-api/internal/dataset"
	"github.com/openchess/tuner-api/internal/metric"
	"github.com/openchess/tuner-api/internal/models"
	"github.com/openchess/tuner-api/internal/recipe"
)

type finalState int

const (
	stateUntrained finalState = iota
	stateFitted
	stateEvaluated
)

// Finalizer refits the winning config on the full training partition
// and scores it exactly once on the untouched test partition. Each
// instance moves Untrained -> Fitted -> Evaluated; re-scoring requires
// a fresh instance.
type Finalizer struct {
	Family   classifier.Family
	Params   map[string]float64
	Spec     recipe.Spec
	Response string
	Seed     int64
	Logger   *zap.SugaredLogger

	state   finalState
	recipe  *recipe.State
	model   classifier.Model
	classes []string
}

// Fit trains a fresh RecipeState and the chosen model on the entire
// training partition, no folding.
func (f *Finalizer) Fit(train *dataset.Table) error {
	if f.state != stateUntrained {
		return errors.New("tuning: finalizer already fitted")
	}

	classes, err := dataset.Classes(train, f.Response)
	if err != nil {
		return err
	}
	labels, err := train.Categorical(f.Response)
	if err != nil {
		return err
	}
	y, err := dataset.EncodeLabels(labels, classes)
	if err != nil {
		return err
	}

	state, err := recipe.Fit(train, f.Spec)
	if err != nil {
		return fmt.Errorf("final recipe fit: %w", err)
	}
	x, err := state.Apply(train)
	if err != nil {
		return err
	}

	model, err := f.Family.Train(x, y, len(classes), f.Params, f.Seed)
	if err != nil {
		return fmt.Errorf("final training: %w", err)
	}

	f.recipe = state
	f.model = model
	f.classes = classes
	f.state = stateFitted
	return nil
}

// Evaluate interprets the test partition strictly through the frozen
// RecipeState and computes the held-out metric. Any failure here is
// fatal; nothing is silently defaulted.
func (f *Finalizer) Evaluate(test *dataset.Table) (*models.FinalReport, error) {
	if f.state != stateFitted {
		return nil, errors.New("tuning: finalizer must be fitted exactly once before evaluation")
	}

	labels, err := test.Categorical(f.Response)
	if err != nil {
		return nil, err
	}
	y, err := dataset.EncodeLabels(labels, f.classes)
	if err != nil {
		return nil, fmt.Errorf("held-out labels: %w", err)
	}
	x, err := f.recipe.Apply(test)
	if err != nil {
		return nil, fmt.Errorf("held-out transform: %w", err)
	}

	proba := f.model.PredictProba(x)
	auc, err := metric.MacroOVRAUC(y, proba, len(f.classes))
	if err != nil {
		return nil, fmt.Errorf("held-out scoring: %w", err)
	}

	f.state = stateEvaluated
	report := &models.FinalReport{
		RunID:         uuid.New(),
		Config:        models.ModelConfig{Family: f.Family.Name(), Params: f.Params},
		HeldOutAUC:    auc,
		Classes:       f.classes,
		Probabilities: proba,
		TestSize:      test.Len(),
		CreatedAt:     time.Now().UTC(),
	}
	f.Logger.Infow("Held-out evaluation complete",
		"family", report.Config.Family,
		"config", report.Config.Key(),
		"rocAUC", auc,
		"testSize", report.TestSize,
	)
	return report, nil
}

// RecipeChecksum fingerprints the frozen final recipe. Unchanged before
// and after Evaluate, confirming test data never influences the fit.
func (f *Finalizer) RecipeChecksum() (uint64, error) {
	if f.recipe == nil {
		return 0, errors.New("tuning: finalizer not fitted")
	}
	return f.recipe.Checksum(), nil
}
