// Package capitalgains implements tax-lot selection and capital-gains
// aggregation: holding-period classification, FIFO/LIFO/specific-id lot
// consumption, basis apportionment and strategy comparison.
package capitalgains

import (
	"fmt"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/money"
)

// TaxLot is a discrete acquisition of a security, tracked separately for
// cost-basis purposes. CostBasis covers the full lot. Lots are immutable
// inputs; selection produces derived SelectedLot values, never mutations.
type TaxLot struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	AcquiredAt domain.Date `json:"acquired_at"`
	Quantity   float64     `json:"quantity"`
	CostBasis  money.Money `json:"cost_basis"`
}

// SelectedLot is the portion of a TaxLot consumed by one sale. Ephemeral:
// produced per selection request, never persisted.
type SelectedLot struct {
	LotID         string               `json:"lot_id"`
	AcquiredAt    domain.Date          `json:"acquired_at"`
	QuantitySold  float64              `json:"quantity_sold"`
	PerShareBasis money.Money          `json:"per_share_basis"`
	TotalBasis    money.Money          `json:"total_basis"`
	Proceeds      money.Money          `json:"proceeds"`
	GainLoss      money.Money          `json:"gain_loss"`
	HoldingPeriod domain.HoldingPeriod `json:"holding_period"`
}

// LotSelectionResult aggregates the SelectedLot entries for one method.
// QuantitySold below RequestedQuantity signals partial fulfillment, which is
// a normal outcome, not an error.
type LotSelectionResult struct {
	Method             string        `json:"method"`
	RequestedQuantity  float64       `json:"requested_quantity"`
	QuantitySold       float64       `json:"quantity_sold"`
	SelectedLots       []SelectedLot `json:"selected_lots"`
	TotalProceeds      money.Money   `json:"total_proceeds"`
	TotalBasis         money.Money   `json:"total_basis"`
	TotalGainLoss      money.Money   `json:"total_gain_loss"`
	ShortTermGainLoss  money.Money   `json:"short_term_gain_loss"`
	LongTermGainLoss   money.Money   `json:"long_term_gain_loss"`
	EstimatedTaxImpact money.Money   `json:"estimated_tax_impact"`
}

type methodKind int

const (
	methodFIFO methodKind = iota
	methodLIFO
	methodSpecificID
)

// Method is a closed lot-selection method variant. Only the three
// constructors can produce one, so invalid methods are unrepresentable.
// Specific identification carries its lot-id list.
type Method struct {
	kind methodKind
	ids  []string
}

// FIFO selects lots oldest acquisition first.
func FIFO() Method {
	return Method{kind: methodFIFO}
}

// LIFO selects lots newest acquisition first.
func LIFO() Method {
	return Method{kind: methodLIFO}
}

// SpecificID selects exactly the identified lots, in the given order.
// Ids that match no lot are skipped, not rejected.
func SpecificID(ids ...string) Method {
	return Method{kind: methodSpecificID, ids: ids}
}

// ParseMethod builds a Method from its wire name. SpecificID requires a
// non-empty id list.
func ParseMethod(name string, ids []string) (Method, error) {
	switch name {
	case "fifo":
		return FIFO(), nil
	case "lifo":
		return LIFO(), nil
	case "specific_id":
		if len(ids) == 0 {
			return Method{}, fmt.Errorf("specific_id method requires lot ids")
		}
		return SpecificID(ids...), nil
	default:
		return Method{}, fmt.Errorf("unknown lot selection method %q", name)
	}
}

// String returns the wire name of the method.
func (m Method) String() string {
	switch m.kind {
	case methodLIFO:
		return "lifo"
	case methodSpecificID:
		return "specific_id"
	default:
		return "fifo"
	}
}
