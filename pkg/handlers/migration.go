package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/apperrors"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
	"github.com/ledgermap/ledgermap-engine/pkg/pipeline"
)

// MigrationService is the pipeline surface the HTTP layer exposes.
type MigrationService interface {
	Migrate(ctx context.Context, businessID string) (*models.MigrationSummary, error)
	Analyze(ctx context.Context, businessID, collectionID string) (*models.CollectionAnalysis, error)
	Classify(ctx context.Context, analysis *models.CollectionAnalysis) (*models.MappingResult, error)
	Progress() []pipeline.Event
	Runs(ctx context.Context, businessID string, limit int) ([]*models.MigrationRun, error)
}

// MigrationHandler exposes the migration pipeline over HTTP.
type MigrationHandler struct {
	service MigrationService
	logger  *zap.Logger
}

// NewMigrationHandler creates a new MigrationHandler.
func NewMigrationHandler(service MigrationService, logger *zap.Logger) *MigrationHandler {
	return &MigrationHandler{service: service, logger: logger}
}

// RegisterRoutes registers the migration handler's routes on the given mux.
func (h *MigrationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/businesses/{bid}/migrations", h.Migrate)
	mux.HandleFunc("GET /api/businesses/{bid}/migrations", h.ListRuns)
	mux.HandleFunc("GET /api/businesses/{bid}/migrations/progress", h.Progress)
	mux.HandleFunc("GET /api/businesses/{bid}/collections/{cid}/analysis", h.Analysis)
}

// Migrate handles POST /api/businesses/{bid}/migrations.
// Runs the full pipeline synchronously and returns the run summary.
func (h *MigrationHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("bid")
	if businessID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "business id is required")
		return
	}

	summary, err := h.service.Migrate(r.Context(), businessID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoCollections) {
			_ = ErrorResponse(w, http.StatusNotFound, "no_collections", err.Error())
			return
		}
		h.logger.Error("Migration run failed",
			zap.String("business_id", businessID), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "migration_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to encode migration summary", zap.Error(err))
	}
}

// ListRuns handles GET /api/businesses/{bid}/migrations.
func (h *MigrationHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("bid")

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := h.service.Runs(r.Context(), businessID, limit)
	if err != nil {
		h.logger.Error("Failed to list migration runs",
			zap.String("business_id", businessID), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]any{"runs": runs}); err != nil {
		h.logger.Error("Failed to encode migration runs", zap.Error(err))
	}
}

// Progress handles GET /api/businesses/{bid}/migrations/progress.
// Returns a snapshot of the buffered progress events.
func (h *MigrationHandler) Progress(w http.ResponseWriter, r *http.Request) {
	events := h.service.Progress()
	if err := WriteJSON(w, http.StatusOK, map[string]any{"events": events}); err != nil {
		h.logger.Error("Failed to encode progress events", zap.Error(err))
	}
}

// AnalysisResponse pairs a collection profile with its mapping preview.
type AnalysisResponse struct {
	Analysis *models.CollectionAnalysis `json:"analysis"`
	Mapping  *models.MappingResult      `json:"mapping"`
}

// Analysis handles GET /api/businesses/{bid}/collections/{cid}/analysis.
// Profiles a collection and previews its table mapping without writing
// anything.
func (h *MigrationHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	businessID := r.PathValue("bid")
	collectionID := r.PathValue("cid")

	analysis, err := h.service.Analyze(r.Context(), businessID, collectionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", err.Error())
			return
		}
		h.logger.Error("Collection analysis failed",
			zap.String("business_id", businessID),
			zap.String("collection_id", collectionID),
			zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "analysis_failed", err.Error())
		return
	}

	mapping, err := h.service.Classify(r.Context(), analysis)
	if err != nil {
		_ = ErrorResponse(w, http.StatusInternalServerError, "classification_failed", err.Error())
		return
	}

	if err := WriteJSON(w, http.StatusOK, AnalysisResponse{Analysis: analysis, Mapping: mapping}); err != nil {
		h.logger.Error("Failed to encode analysis response", zap.Error(err))
	}
}
