package tuning

import (
	"fmt"

	"github.com/openchess/tuner-api/internal/models"
)

// DegenerateFoldError marks a cell whose validation fold lacked a
// class, leaving the one-vs-rest AUC undefined. Recoverable: the cell
// becomes a missing observation for its config.
type DegenerateFoldError struct {
	Config models.ModelConfig
	Fold   int
	Cause  error
}

func (e *DegenerateFoldError) Error() string {
	return fmt.Sprintf("tuning: fold %d degenerate for %s: %v", e.Fold, e.Config.Key(), e.Cause)
}

func (e *DegenerateFoldError) Unwrap() error { return e.Cause }

// ModelTrainingError marks a cell whose model fit failed. Recoverable:
// sibling configs and families proceed unaffected, the config ranks by
// its remaining folds (or last, when none succeed).
type ModelTrainingError struct {
	Config models.ModelConfig
	Fold   int
	Cause  error
}

func (e *ModelTrainingError) Error() string {
	return fmt.Sprintf("tuning: training failed on fold %d for %s: %v", e.Fold, e.Config.Key(), e.Cause)
}

func (e *ModelTrainingError) Unwrap() error { return e.Cause }
