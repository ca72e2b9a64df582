// Package handlers provides HTTP handlers for quarterly tax estimates.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/modules/estimates"
	"github.com/aristath/taxfolio/internal/taxparams"
)

// Handler handles quarterly estimate HTTP requests.
type Handler struct {
	engine *estimates.Engine
	params *taxparams.Store
	log    zerolog.Logger
}

// NewHandler creates a quarterly estimates handler.
func NewHandler(engine *estimates.Engine, params *taxparams.Store, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		params: params,
		log:    log.With().Str("handler", "estimates").Logger(),
	}
}

type calculateRequest struct {
	Year int `json:"year,omitempty"`
	estimates.Input
}

// HandleCalculate projects the quarterly payment schedule.
// POST /api/estimates/quarterly
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Year == 0 {
		req.Year = taxparams.DefaultYear
	}
	if req.AsOf.IsZero() {
		h.writeError(w, http.StatusBadRequest, "as_of date is required")
		return
	}

	params, err := h.params.Year(req.Year)
	if err != nil {
		if errors.Is(err, domain.ErrYearNotConfigured) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to load tax parameters")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	result, err := h.engine.Calculate(req.Input, params)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownFilingStatus) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes a JSON error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
