package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/models"
)

// ResultStore persists per-family tuning tables and final reports.
type ResultStore struct {
	pg     PgPool
	logger *zap.SugaredLogger
}

func NewResultStore(pg PgPool, logger *zap.Logger) *ResultStore {
	return &ResultStore{pg: pg, logger: logger.Sugar()}
}

// EnsureSchema creates the artifact tables when they do not exist yet.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{`
		CREATE TABLE IF NOT EXISTS tuning_results (
			run_id      UUID             NOT NULL,
			family      TEXT             NOT NULL,
			rank        INT              NOT NULL,
			params      JSONB            NOT NULL,
			mean_metric DOUBLE PRECISION NOT NULL,
			std_dev     DOUBLE PRECISION NOT NULL,
			fold_count  INT              NOT NULL,
			PRIMARY KEY (run_id, family, rank)
		)`, `
		CREATE TABLE IF NOT EXISTS final_reports (
			run_id        UUID             PRIMARY KEY,
			family        TEXT             NOT NULL,
			params        JSONB            NOT NULL,
			held_out_auc  DOUBLE PRECISION NOT NULL,
			classes       TEXT[]           NOT NULL,
			probabilities JSONB            NOT NULL,
			test_size     INT              NOT NULL,
			created_at    TIMESTAMPTZ      NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pg.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SaveTuning bulk-inserts a family's ranked entries for one run.
func (s *ResultStore) SaveTuning(ctx context.Context, runID uuid.UUID, result *models.TuningResult) error {
	if len(result.Entries) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO tuning_results (run_id, family, rank, params, mean_metric, std_dev, fold_count) VALUES ")
	vals := make([]interface{}, 0, len(result.Entries)*7)

	for i, entry := range result.Entries {
		params, err := json.Marshal(entry.Config.Params)
		if err != nil {
			return fmt.Errorf("marshal params for %s: %w", entry.Config.Key(), err)
		}
		n := i * 7
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7)
		vals = append(vals, runID, result.Family, i+1, params, entry.Mean, entry.StdDev, entry.Folds)
	}
	sb.WriteString(" ON CONFLICT (run_id, family, rank) DO NOTHING")

	if _, err := s.pg.Exec(ctx, sb.String(), vals...); err != nil {
		return fmt.Errorf("insert tuning results for %s: %w", result.Family, err)
	}
	s.logger.Infow("Tuning table persisted", "run_id", runID, "family", result.Family, "entries", len(result.Entries))
	return nil
}

// SaveReport persists the final held-out evaluation of a run.
func (s *ResultStore) SaveReport(ctx context.Context, report *models.FinalReport) error {
	params, err := json.Marshal(report.Config.Params)
	if err != nil {
		return err
	}
	proba, err := json.Marshal(report.Probabilities)
	if err != nil {
		return err
	}

	_, err = s.pg.Exec(ctx, `
		INSERT INTO final_reports (run_id, family, params, held_out_auc, classes, probabilities, test_size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, report.RunID, report.Config.Family, params, report.HeldOutAUC, report.Classes, proba, report.TestSize, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert final report: %w", err)
	}
	s.logger.Infow("Final report persisted", "run_id", report.RunID, "family", report.Config.Family, "heldOutAUC", report.HeldOutAUC)
	return nil
}

// GetTuning loads one family's ranked table for a run.
func (s *ResultStore) GetTuning(ctx context.Context, runID uuid.UUID, family string) (*models.TuningResult, error) {
	rows, err := s.pg.Query(ctx, `
		SELECT params, mean_metric, std_dev, fold_count
		FROM tuning_results
		WHERE run_id = $1 AND family = $2
		ORDER BY rank
	`, runID, family)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &models.TuningResult{Family: family}
	for rows.Next() {
		var (
			raw   []byte
			entry models.TuningEntry
		)
		if err := rows.Scan(&raw, &entry.Mean, &entry.StdDev, &entry.Folds); err != nil {
			return nil, err
		}
		entry.Config.Family = family
		if err := json.Unmarshal(raw, &entry.Config.Params); err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetReport loads the final report of a run.
func (s *ResultStore) GetReport(ctx context.Context, runID uuid.UUID) (*models.FinalReport, error) {
	report := &models.FinalReport{RunID: runID}
	var params, proba []byte
	err := s.pg.QueryRow(ctx, `
		SELECT family, params, held_out_auc, classes, probabilities, test_size, created_at
		FROM final_reports
		WHERE run_id = $1
	`, runID).Scan(&report.Config.Family, &params, &report.HeldOutAUC, &report.Classes, &proba, &report.TestSize, &report.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &report.Config.Params); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(proba, &report.Probabilities); err != nil {
		return nil, err
	}
	return report, nil
}
