// Package handlers exposes the tax-parameter tables over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/taxparams"
)

// Handler serves tax-parameter lookups.
type Handler struct {
	store *taxparams.Store
	log   zerolog.Logger
}

// NewHandler creates a tax parameters handler.
func NewHandler(store *taxparams.Store, log zerolog.Logger) *Handler {
	return &Handler{
		store: store,
		log:   log.With().Str("handler", "taxparams").Logger(),
	}
}

// HandleListYears returns the configured tax years.
// GET /api/tax-params
func (h *Handler) HandleListYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.store.Years()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list tax years")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"years": years})
}

// HandleGetYear returns one year's full parameter table.
// GET /api/tax-params/{year}
func (h *Handler) HandleGetYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	params, err := h.store.Year(year)
	if err != nil {
		if errors.Is(err, domain.ErrYearNotConfigured) {
			h.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to load tax parameters")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, params)
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
