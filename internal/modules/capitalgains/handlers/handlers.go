// Package handlers provides HTTP handlers for tax-lot selection.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/modules/capitalgains"
	"github.com/aristath/taxfolio/internal/money"
)

// Handler handles capital gains HTTP requests.
type Handler struct {
	engine *capitalgains.Engine
	log    zerolog.Logger
}

// NewHandler creates a capital gains handler.
func NewHandler(engine *capitalgains.Engine, log zerolog.Logger) *Handler {
	return &Handler{
		engine: engine,
		log:    log.With().Str("handler", "capital_gains").Logger(),
	}
}

type selectLotsRequest struct {
	Lots           []capitalgains.TaxLot `json:"lots"`
	Quantity       float64               `json:"quantity"`
	Price          money.Money           `json:"price"`
	Method         string                `json:"method"`
	SaleDate       domain.Date           `json:"sale_date"`
	SpecificLotIDs []string              `json:"specific_lot_ids,omitempty"`
}

type compareStrategiesRequest struct {
	selectLotsRequest
	MarginalRate float64  `json:"marginal_rate"`
	LongTermRate float64  `json:"long_term_rate"`
	Methods      []string `json:"methods,omitempty"`
}

// normalize applies request defaults: lots without ids get generated ones so
// selection results stay traceable, and an omitted method means fifo.
func (req *selectLotsRequest) normalize() {
	for i := range req.Lots {
		if req.Lots[i].ID == "" {
			req.Lots[i].ID = uuid.New().String()
		}
	}
	if req.Method == "" {
		req.Method = "fifo"
	}
}

// HandleSelectLots runs one lot selection.
// POST /api/capital-gains/select-lots
func (h *Handler) HandleSelectLots(w http.ResponseWriter, r *http.Request) {
	var req selectLotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.normalize()

	method, err := capitalgains.ParseMethod(req.Method, req.SpecificLotIDs)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := h.engine.SelectLots(req.Lots, req.Quantity, req.Price, method, req.SaleDate)
	h.writeJSON(w, http.StatusOK, result)
}

// HandleCompareStrategies runs a selection per requested method.
// POST /api/capital-gains/compare-strategies
func (h *Handler) HandleCompareStrategies(w http.ResponseWriter, r *http.Request) {
	var req compareStrategiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	req.normalize()

	var methods []capitalgains.Method
	for _, name := range req.Methods {
		method, err := capitalgains.ParseMethod(name, req.SpecificLotIDs)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		methods = append(methods, method)
	}

	results := h.engine.CompareStrategies(
		req.Lots, req.Quantity, req.Price, req.SaleDate,
		req.MarginalRate, req.LongTermRate, methods)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategies": results,
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
