package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type tuningRequest struct {
	RunID  string `validate:"required,uuid4"`
	Family string `validate:"required,oneof=knn multinom glmnet rand_forest"`
}

// GetTuning serves one family's ranked tuning table for a run.
// GET /api/v1/runs/{runID}/tuning/{family}
func (h *Handler) GetTuning(w http.ResponseWriter, r *http.Request) {
	req := tuningRequest{
		RunID:  chi.URLParam(r, "runID"),
		Family: chi.URLParam(r, "family"),
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid run id or family")
		return
	}
	runID, err := uuid.Parse(req.RunID)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}

	result, err := h.results.GetTuning(r.Context(), runID, req.Family)
	if err != nil {
		h.logger.Errorw("Failed to load tuning table", "run_id", req.RunID, "family", req.Family, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to load tuning table")
		return
	}
	if len(result.Entries) == 0 {
		h.errorResponse(w, http.StatusNotFound, "no tuning results for this run and family")
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// GetReport serves the final held-out report of a run.
// GET /api/v1/runs/{runID}/report
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}

	report, err := h.results.GetReport(r.Context(), runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.errorResponse(w, http.StatusNotFound, "no report for this run")
			return
		}
		h.logger.Errorw("Failed to load report", "run_id", runID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "failed to load report")
		return
	}
	h.respondJSON(w, http.StatusOK, report)
}
