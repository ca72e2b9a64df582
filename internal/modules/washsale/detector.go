// Package washsale implements IRC §1091 wash-sale detection: a realized loss
// is disallowed when a substantially identical security (approximated as the
// same symbol) is purchased within the 61-day window spanning 30 days before
// through 30 days after the sale, inclusive.
package washsale

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/money"
)

// windowDays is the wash-sale window half-width: 30 days either side of the
// sale date, both endpoints inclusive.
const windowDays = 30

// SaleRecord is a single realized sale under examination. RealizedLoss is
// the signed gain/loss; only negative values can trigger a violation.
type SaleRecord struct {
	ID           string      `json:"id,omitempty"`
	Symbol       string      `json:"symbol"`
	Date         domain.Date `json:"date"`
	Quantity     float64     `json:"quantity"`
	RealizedLoss money.Money `json:"realized_loss"`
}

// PurchaseRecord is a purchase that may serve as the replacement leg of a
// wash sale.
type PurchaseRecord struct {
	ID       string      `json:"id,omitempty"`
	Symbol   string      `json:"symbol"`
	Date     domain.Date `json:"date"`
	Quantity float64     `json:"quantity"`
	Cost     money.Money `json:"cost"`
}

// Violation pairs a disallowed loss sale with the replacement purchase that
// triggered it. BasisAdjustment is the amount to add to the replacement
// lot's cost basis; the loss is deferred, not lost.
type Violation struct {
	SaleID          string      `json:"sale_id,omitempty"`
	Symbol          string      `json:"symbol"`
	SaleDate        domain.Date `json:"sale_date"`
	PurchaseDate    domain.Date `json:"purchase_date"`
	DisallowedLoss  money.Money `json:"disallowed_loss"`
	BasisAdjustment money.Money `json:"basis_adjustment"`
	Explanation     string      `json:"explanation"`
}

// CheckResult is the outcome of a wash-sale scan.
type CheckResult struct {
	Violations      []Violation `json:"violations"`
	TotalDisallowed money.Money `json:"total_disallowed"`
	LossSalesChecked int        `json:"loss_sales_checked"`
	Compliant       bool        `json:"compliant"`
}

// Detector matches loss sales against replacement purchases. All methods
// are pure; the logger is the only dependency.
type Detector struct {
	log zerolog.Logger
}

// NewDetector creates a wash sale detector.
func NewDetector(log zerolog.Logger) *Detector {
	return &Detector{log: log.With().Str("service", "wash_sale").Logger()}
}

// inWindow reports whether a purchase date falls inside the wash-sale window
// around a sale date. Both directions count: replacement shares bought
// before the loss sale trigger the rule just as ones bought after.
func inWindow(saleDate, purchaseDate domain.Date) bool {
	return saleDate.DaysApart(purchaseDate) <= windowDays
}

// CheckWashSales scans sales in their input order against the purchase
// history. For each loss sale the earliest-dated unconsumed same-symbol
// purchase inside the window is matched and consumed, so no purchase
// services more than one sale; the first sale in input order claims a
// contested match. The consumed set is threaded through the fold rather
// than shared, keeping the scan a pure function of its inputs.
func (d *Detector) CheckWashSales(sales []SaleRecord, purchases []PurchaseRecord) CheckResult {
	result := CheckResult{Violations: []Violation{}}

	consumed := make(map[int]bool, len(purchases))
	for _, sale := range sales {
		if !sale.RealizedLoss.IsNegative() {
			continue
		}
		result.LossSalesChecked++

		match := -1
		for i, purchase := range purchases {
			if consumed[i] || purchase.Symbol != sale.Symbol {
				continue
			}
			if !inWindow(sale.Date, purchase.Date) {
				continue
			}
			// Earliest-dated candidate wins; on equal dates the first
			// listed purchase stands.
			if match == -1 || purchase.Date.Before(purchases[match].Date.Time) {
				match = i
			}
		}
		if match == -1 {
			continue
		}

		consumed[match] = true
		disallowed := sale.RealizedLoss.Abs()
		result.Violations = append(result.Violations, Violation{
			SaleID:          sale.ID,
			Symbol:          sale.Symbol,
			SaleDate:        sale.Date,
			PurchaseDate:    purchases[match].Date,
			DisallowedLoss:  disallowed,
			BasisAdjustment: disallowed,
			Explanation: fmt.Sprintf(
				"Loss of $%s on %s sale dated %s is disallowed: replacement shares purchased %s, within the 61-day window. The loss defers into the replacement lot's basis.",
				disallowed, sale.Symbol, sale.Date, purchases[match].Date),
		})
		result.TotalDisallowed = result.TotalDisallowed.Add(disallowed)
	}

	result.Compliant = len(result.Violations) == 0

	d.log.Debug().
		Int("sales", len(sales)).
		Int("loss_sales", result.LossSalesChecked).
		Int("violations", len(result.Violations)).
		Str("disallowed", result.TotalDisallowed.String()).
		Msg("Wash sale check complete")

	return result
}

// WouldTriggerWashSale is the forward-looking, read-only form of the check:
// would selling symbol at a loss on proposedSaleDate find a same-symbol
// purchase inside the window? Nothing is consumed or mutated, so it is safe
// to call while planning a sale that has not happened.
func (d *Detector) WouldTriggerWashSale(symbol string, proposedSaleDate domain.Date, recentPurchases []PurchaseRecord) bool {
	for _, purchase := range recentPurchases {
		if purchase.Symbol == symbol && inWindow(proposedSaleDate, purchase.Date) {
			return true
		}
	}
	return false
}

// EarliestSafeRepurchaseDate returns the first date on which repurchasing
// the sold security falls outside the post-sale window: saleDate + 31 days.
func EarliestSafeRepurchaseDate(saleDate domain.Date) domain.Date {
	return saleDate.AddDays(windowDays + 1)
}
