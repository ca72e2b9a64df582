package testing

import (
	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/modules/capitalgains"
	"github.com/aristath/taxfolio/internal/modules/washsale"
	"github.com/aristath/taxfolio/internal/money"
)

// NewLotFixtures returns a small set of tax lots for use in tests: one
// long-term lot and one short-term lot in the same symbol, acquired in
// FIFO order.
func NewLotFixtures() []capitalgains.TaxLot {
	return []capitalgains.TaxLot{
		{
			ID:         "lot-a",
			Symbol:     "VTI",
			AcquiredAt: domain.NewDate(2023, 1, 10),
			Quantity:   100,
			CostBasis:  money.FromFloat(15000),
		},
		{
			ID:         "lot-b",
			Symbol:     "VTI",
			AcquiredAt: domain.NewDate(2025, 3, 1),
			Quantity:   50,
			CostBasis:  money.FromFloat(9000),
		},
	}
}

// NewWashSaleFixtures returns a loss sale and a replacement purchase 15
// days later in the same symbol, which together form a wash-sale violation.
func NewWashSaleFixtures() ([]washsale.SaleRecord, []washsale.PurchaseRecord) {
	sales := []washsale.SaleRecord{
		{
			ID:           "s1",
			Symbol:       "VTI",
			Date:         domain.NewDate(2025, 3, 31),
			Quantity:     100,
			RealizedLoss: money.FromFloat(-1200),
		},
	}
	purchases := []washsale.PurchaseRecord{
		{
			ID:       "p1",
			Symbol:   "VTI",
			Date:     domain.NewDate(2025, 4, 15),
			Quantity: 100,
			Cost:     money.FromFloat(19000),
		},
	}
	return sales, purchases
}
