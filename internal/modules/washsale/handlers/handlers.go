// Package handlers provides HTTP handlers for wash-sale checks.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/modules/washsale"
)

// Handler handles wash sale HTTP requests.
type Handler struct {
	detector *washsale.Detector
	log      zerolog.Logger
}

// NewHandler creates a wash sale handler.
func NewHandler(detector *washsale.Detector, log zerolog.Logger) *Handler {
	return &Handler{
		detector: detector,
		log:      log.With().Str("handler", "wash_sale").Logger(),
	}
}

type checkRequest struct {
	Sales     []washsale.SaleRecord     `json:"sales"`
	Purchases []washsale.PurchaseRecord `json:"purchases"`
}

type wouldTriggerRequest struct {
	Symbol           string                    `json:"symbol"`
	ProposedSaleDate domain.Date               `json:"proposed_sale_date"`
	RecentPurchases  []washsale.PurchaseRecord `json:"recent_purchases"`
}

// HandleCheck scans a transaction history for wash-sale violations.
// POST /api/wash-sales/check
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result := h.detector.CheckWashSales(req.Sales, req.Purchases)
	h.writeJSON(w, http.StatusOK, result)
}

// HandleWouldTrigger answers the planning question: would a sale on this
// date trip the wash-sale rule, and when is repurchase safe again?
// POST /api/wash-sales/would-trigger
func (h *Handler) HandleWouldTrigger(w http.ResponseWriter, r *http.Request) {
	var req wouldTriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Symbol == "" {
		h.writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	triggered := h.detector.WouldTriggerWashSale(req.Symbol, req.ProposedSaleDate, req.RecentPurchases)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":                       req.Symbol,
		"proposed_sale_date":           req.ProposedSaleDate,
		"would_trigger":                triggered,
		"earliest_safe_repurchase_date": washsale.EarliestSafeRepurchaseDate(req.ProposedSaleDate),
	})
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
