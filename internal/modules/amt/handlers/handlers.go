// Package handlers provides HTTP handlers for AMT computation.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/modules/amt"
	"github.com/aristath/taxfolio/internal/taxparams"
)

// Handler handles AMT HTTP requests.
type Handler struct {
	calculator *amt.Calculator
	params     *taxparams.Store
	log        zerolog.Logger
}

// NewHandler creates an AMT handler.
func NewHandler(calculator *amt.Calculator, params *taxparams.Store, log zerolog.Logger) *Handler {
	return &Handler{
		calculator: calculator,
		params:     params,
		log:        log.With().Str("handler", "amt").Logger(),
	}
}

type computeRequest struct {
	Year int `json:"year,omitempty"`
	amt.Input
}

// HandleCompute computes AMT for one filing.
// POST /api/amt/calculate
func (h *Handler) HandleCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Year == 0 {
		req.Year = taxparams.DefaultYear
	}

	params, err := h.params.Year(req.Year)
	if err != nil {
		h.writeYearError(w, err)
		return
	}

	result, err := h.calculator.Compute(req.Input, params)
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

// writeYearError maps parameter-store failures to HTTP statuses.
func (h *Handler) writeYearError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrYearNotConfigured) {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Failed to load tax parameters")
	h.writeError(w, http.StatusInternalServerError, err.Error())
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
