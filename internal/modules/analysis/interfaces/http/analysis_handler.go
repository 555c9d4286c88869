package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/application"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
	ws "github.com/saransh1220/snaplabel/internal/modules/analysis/infrastructure/websocket"
	"github.com/saransh1220/snaplabel/internal/shared/utils"
)

type AnalysisHandler struct {
	service application.AnalysisService
	hub     *ws.Hub
	logger  *slog.Logger
}

func NewAnalysisHandler(service application.AnalysisService, hub *ws.Hub, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, hub: hub, logger: logger}
}

type UploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type AnalyzeRequest struct {
	Key string `json:"key"`
}

// AnalyzeResponse is the body returned once an analysis is stored.
type AnalyzeResponse struct {
	AnalysisID uuid.UUID     `json:"analysisId"`
	CreatedAt  time.Time     `json:"createdAt"`
	Labels     domain.Labels `json:"labels"`
}

type notFoundResponse struct {
	Error      string `json:"error"`
	AnalysisID string `json:"analysisId"`
}

// IssueUploadURL handles POST /upload-url. A missing or malformed body falls
// back to the default filename and content type.
func (h *AnalysisHandler) IssueUploadURL(w http.ResponseWriter, r *http.Request) {
	var req UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = UploadURLRequest{}
	}

	grant, err := h.service.IssueUploadURL(r.Context(), req.Filename, req.ContentType)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create upload URL", cause(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, grant)
}

// Analyze handles POST /analyze.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = AnalyzeRequest{}
	}

	analysis, err := h.service.Analyze(r.Context(), req.Key)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingKey):
			utils.WriteError(w, http.StatusBadRequest, "Missing required field: key", nil)
		case errors.Is(err, domain.ErrDetectionFailed):
			utils.WriteError(w, http.StatusInternalServerError, "Label detection failed", cause(err))
		case errors.Is(err, domain.ErrSaveFailed):
			utils.WriteError(w, http.StatusInternalServerError, "Saving analysis failed", cause(err))
		default:
			utils.WriteError(w, http.StatusInternalServerError, "Analyze failed", err)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, AnalyzeResponse{
		AnalysisID: analysis.ID,
		CreatedAt:  analysis.CreatedAt,
		Labels:     analysis.Labels,
	})
}

// GetResult handles GET /result?analysisId=.
func (h *AnalysisHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("analysisId")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing query param: analysisId", nil)
		return
	}

	analysis, cached, err := h.service.GetResult(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, notFoundResponse{Error: "Not found", AnalysisID: id})
			return
		}
		h.logger.ErrorContext(r.Context(), "result lookup failed", "analysis_id", id, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load analysis", err)
		return
	}

	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	utils.WriteJSON(w, http.StatusOK, analysis)
}

// Subscribe handles GET /ws?key= and streams analysis events for that key.
func (h *AnalysisHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing query param: key", nil)
		return
	}
	ws.ServeWs(h.hub, w, r, key)
}

// cause returns the underlying failure of an OpError for the details field.
func cause(err error) error {
	var opErr *domain.OpError
	if errors.As(err, &opErr) {
		return opErr.Err
	}
	return err
}
