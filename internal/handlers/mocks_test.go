package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/openchess/tuner-api/internal/models"
)

// MockResultsStore implements ResultsStore for testing.
type MockResultsStore struct {
	GetTuningFunc func(ctx context.Context, runID uuid.UUID, family string) (*models.TuningResult, error)
	GetReportFunc func(ctx context.Context, runID uuid.UUID) (*models.FinalReport, error)
}

func (m *MockResultsStore) GetTuning(ctx context.Context, runID uuid.UUID, family string) (*models.TuningResult, error) {
	if m.GetTuningFunc != nil {
		return m.GetTuningFunc(ctx, runID, family)
	}
	return &models.TuningResult{}, nil
}

func (m *MockResultsStore) GetReport(ctx context.Context, runID uuid.UUID) (*models.FinalReport, error) {
	if m.GetReportFunc != nil {
		return m.GetReportFunc(ctx, runID)
	}
	return &models.FinalReport{}, nil
}
