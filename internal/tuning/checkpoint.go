package tuning

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/openchess/tuner-api/internal/classifier"
	"github.com/openchess/tuner-api/internal/models"
	"github.com/openchess/tuner-api/internal/recipe"
)

// CheckpointStore persists per-family tuning tables so an interrupted
// search resumes without recomputation. Implementations must tolerate
// concurrent Save calls for different families.
type CheckpointStore interface {
	Load(ctx context.Context, key, family string) (*models.TuningResult, error)
	Save(ctx context.Context, key, family string, result *models.TuningResult) error
}

// CheckpointKey content-addresses a search: any change to the dataset,
// the recipe or the grids produces a different key and so a cold start.
func CheckpointKey(datasetVersion string, spec recipe.Spec, families []classifier.Family, k int, seed int64) string {
	h := xxhash.New()
	h.WriteString(datasetVersion)

	specJSON, _ := json.Marshal(spec)
	h.Write(specJSON)

	for _, f := range families {
		h.WriteString("|" + f.Name())
		for _, p := range f.Grid() {
			fmt.Fprintf(h, "|%s", p.Name)
			for _, v := range p.Values {
				fmt.Fprintf(h, ",%g", v)
			}
		}
	}
	fmt.Fprintf(h, "|k=%d|seed=%d", k, seed)
	return fmt.Sprintf("%016x", h.Sum64())
}

// NopCheckpoint disables resumption.
type NopCheckpoint struct{}

func (NopCheckpoint) Load(context.Context, string, string) (*models.TuningResult, error) {
	return nil, nil
}

func (NopCheckpoint) Save(context.Context, string, string, *models.TuningResult) error {
	return nil
}
