package capitalgains

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/money"
)

// longTermThresholdDays is the holding-period cutoff in whole days.
// This is a fixed-day approximation of the statutory "more than one year"
// rule; the calendar-month reading would shift the boundary around leap
// years. Kept for parity with existing filings produced by this engine.
const longTermThresholdDays = 365

// Engine performs lot selection and strategy comparison. All methods are
// pure functions of their arguments; the logger is the only dependency.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a capital gains engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("service", "capital_gains").Logger()}
}

// ClassifyHoldingPeriod classifies a holding period against a sale date:
// long-term iff the elapsed time strictly exceeds 365 days.
func ClassifyHoldingPeriod(acquired, sold domain.Date) domain.HoldingPeriod {
	if acquired.DaysUntil(sold) > longTermThresholdDays {
		return domain.LongTerm
	}
	return domain.ShortTerm
}

// SelectLots consumes lots against the requested sale quantity under the
// given method, apportioning basis and classifying each consumed portion
// against saleDate. If the eligible lots hold fewer shares than requested,
// the result covers only what is available; callers detect partial
// fulfillment by comparing QuantitySold to RequestedQuantity.
func (e *Engine) SelectLots(lots []TaxLot, quantity float64, price money.Money, method Method, saleDate domain.Date) LotSelectionResult {
	result := LotSelectionResult{
		Method:            method.String(),
		RequestedQuantity: quantity,
		SelectedLots:      []SelectedLot{},
	}
	if quantity <= 0 {
		return result
	}

	ordered := orderLots(lots, method)

	remaining := quantity
	for _, lot := range ordered {
		if remaining <= 0 {
			break
		}
		if lot.Quantity <= 0 {
			continue
		}

		consumed := lot.Quantity
		if remaining < consumed {
			consumed = remaining
		}

		// Basis for the consumed portion is the lot basis scaled by the
		// consumed fraction in one decimal operation. Computing a rounded
		// per-share basis first and multiplying back loses cents on uneven
		// splits.
		totalBasis := lot.CostBasis.Scale(consumed, lot.Quantity)
		proceeds := price.MulFactor(consumed)
		gainLoss := proceeds.Sub(totalBasis)
		period := ClassifyHoldingPeriod(lot.AcquiredAt, saleDate)

		result.SelectedLots = append(result.SelectedLots, SelectedLot{
			LotID:         lot.ID,
			AcquiredAt:    lot.AcquiredAt,
			QuantitySold:  consumed,
			PerShareBasis: lot.CostBasis.Scale(1, lot.Quantity),
			TotalBasis:    totalBasis,
			Proceeds:      proceeds,
			GainLoss:      gainLoss,
			HoldingPeriod: period,
		})

		result.QuantitySold += consumed
		result.TotalProceeds = result.TotalProceeds.Add(proceeds)
		result.TotalBasis = result.TotalBasis.Add(totalBasis)
		result.TotalGainLoss = result.TotalGainLoss.Add(gainLoss)
		if period == domain.LongTerm {
			result.LongTermGainLoss = result.LongTermGainLoss.Add(gainLoss)
		} else {
			result.ShortTermGainLoss = result.ShortTermGainLoss.Add(gainLoss)
		}

		remaining -= consumed
	}

	e.log.Debug().
		Str("method", result.Method).
		Float64("requested", quantity).
		Float64("sold", result.QuantitySold).
		Str("gain_loss", result.TotalGainLoss.String()).
		Msg("Selected lots")

	return result
}

// CompareStrategies runs SelectLots once per requested method and attaches
// the estimated tax impact of each variant. Results keep the caller's method
// order; there is no implicit sort by outcome. A nil method list defaults to
// FIFO and LIFO.
func (e *Engine) CompareStrategies(lots []TaxLot, quantity float64, price money.Money, saleDate domain.Date, marginalRate, longTermRate float64, methods []Method) []LotSelectionResult {
	if len(methods) == 0 {
		methods = []Method{FIFO(), LIFO()}
	}

	results := make([]LotSelectionResult, 0, len(methods))
	for _, method := range methods {
		result := e.SelectLots(lots, quantity, price, method, saleDate)
		result.EstimatedTaxImpact = estimateTaxImpact(result, marginalRate, longTermRate)
		results = append(results, result)
	}
	return results
}

// estimateTaxImpact values each bucket symmetrically at its own rate:
// gains owe tax, losses offset it at the same rate. A planning estimate,
// not a full return simulation.
func estimateTaxImpact(result LotSelectionResult, marginalRate, longTermRate float64) money.Money {
	shortImpact := result.ShortTermGainLoss.MulFactor(marginalRate)
	longImpact := result.LongTermGainLoss.MulFactor(longTermRate)
	return shortImpact.Add(longImpact)
}

// orderLots returns the candidate lots in consumption order for the method.
// The input slice is never reordered in place.
func orderLots(lots []TaxLot, method Method) []TaxLot {
	switch method.kind {
	case methodSpecificID:
		byID := make(map[string]TaxLot, len(lots))
		for _, lot := range lots {
			byID[lot.ID] = lot
		}
		ordered := make([]TaxLot, 0, len(method.ids))
		seen := make(map[string]bool, len(method.ids))
		for _, id := range method.ids {
			lot, ok := byID[id]
			if !ok || seen[id] {
				// Absent ids are simply excluded from selection.
				continue
			}
			seen[id] = true
			ordered = append(ordered, lot)
		}
		return ordered

	case methodLIFO:
		ordered := append([]TaxLot(nil), lots...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[j].AcquiredAt.Before(ordered[i].AcquiredAt.Time)
		})
		return ordered

	default: // FIFO
		ordered := append([]TaxLot(nil), lots...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].AcquiredAt.Before(ordered[j].AcquiredAt.Time)
		})
		return ordered
	}
}
