// Package handlers exposes persisted run artifacts over HTTP: the
// per-family tuning tables and the final held-out report. The API is a
// read-only consumer boundary; nothing here touches the pipeline.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openchess/tuner-api/internal/models"
)

// ResultsStore is the artifact reader behind the API.
type ResultsStore interface {
	GetTuning(ctx context.Context, runID uuid.UUID, family string) (*models.TuningResult, error)
	GetReport(ctx context.Context, runID uuid.UUID) (*models.FinalReport, error)
}

type Config struct {
	Results ResultsStore
	Pg      *pgxpool.Pool
	Redis   *redis.Client
	Logger  *zap.Logger
}

type Handler struct {
	results   ResultsStore
	pg        *pgxpool.Pool
	redis     *redis.Client
	logger    *zap.SugaredLogger
	validator *validator.Validate
}

func New(cfg Config) *Handler {
	return &Handler{
		results:   cfg.Results,
		pg:        cfg.Pg,
		redis:     cfg.Redis,
		logger:    cfg.Logger.Sugar(),
		validator: validator.New(),
	}
}

// Health check endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// Ready check endpoint
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]bool{
		"postgres": h.pg == nil || h.pg.Ping(ctx) == nil,
		"redis":    h.redis == nil || h.redis.Ping(ctx).Err() == nil,
	}

	allHealthy := true
	for _, ok := range checks {
		if !ok {
			allHealthy = false
			break
		}
	}

	status := http.StatusOK
	if !allHealthy {
		status = http.StatusServiceUnavailable
	}
	h.respondJSON(w, status, map[string]interface{}{
		"ready":  allHealthy,
		"checks": checks,
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Errorw("Failed to encode response", "error", err)
	}
}

func (h *Handler) errorResponse(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
