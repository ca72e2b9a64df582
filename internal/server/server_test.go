package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/taxfolio/internal/config"
	"github.com/aristath/taxfolio/internal/modules/amt"
	"github.com/aristath/taxfolio/internal/modules/capitalgains"
	"github.com/aristath/taxfolio/internal/modules/estimates"
	"github.com/aristath/taxfolio/internal/modules/washsale"
	"github.com/aristath/taxfolio/internal/taxparams"
	testingpkg "github.com/aristath/taxfolio/internal/testing"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	db, cleanup := testingpkg.NewTestDB(t, "taxparams")
	t.Cleanup(cleanup)

	log := zerolog.Nop()
	store, err := taxparams.NewStore(db, log)
	require.NoError(t, err)

	return New(Config{
		Log:         log,
		Config:      &config.Config{Port: 0},
		ParamsDB:    db,
		ParamsStore: store,
	})
}

func doJSON(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeInto(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestSelectLotsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/capital-gains/select-lots", map[string]interface{}{
		"method":    "fifo",
		"quantity":  120,
		"price":     200,
		"sale_date": "2025-06-02",
		"lots":      testingpkg.NewLotFixtures(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result capitalgains.LotSelectionResult
	decodeInto(t, rec, &result)

	assert.Equal(t, "fifo", result.Method)
	assert.Equal(t, 120.0, result.QuantitySold)
	assert.Equal(t, "24000.00", result.TotalProceeds.String())
	assert.Equal(t, "18600.00", result.TotalBasis.String())
	assert.Equal(t, "5400.00", result.TotalGainLoss.String())
	assert.Equal(t, "5000.00", result.LongTermGainLoss.String())
	assert.Equal(t, "400.00", result.ShortTermGainLoss.String())
	require.Len(t, result.SelectedLots, 2)
	assert.Equal(t, "lot-a", result.SelectedLots[0].LotID)
}

func TestSelectLotsGeneratesLotIDs(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/capital-gains/select-lots", map[string]interface{}{
		"quantity":  10,
		"price":     50,
		"sale_date": "2025-06-02",
		"lots": []map[string]interface{}{
			{"symbol": "VTI", "acquired_at": "2024-01-10", "quantity": 10, "cost_basis": 400},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result capitalgains.LotSelectionResult
	decodeInto(t, rec, &result)
	require.Len(t, result.SelectedLots, 1)
	assert.NotEmpty(t, result.SelectedLots[0].LotID)
}

func TestSelectLotsRejectsUnknownMethod(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/capital-gains/select-lots", map[string]interface{}{
		"method":    "hifo",
		"quantity":  1,
		"price":     1,
		"sale_date": "2025-06-02",
		"lots":      []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareStrategiesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/capital-gains/compare-strategies", map[string]interface{}{
		"quantity":       50,
		"price":          200,
		"sale_date":      "2025-06-02",
		"marginal_rate":  0.32,
		"long_term_rate": 0.15,
		"lots":           testingpkg.NewLotFixtures(),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Strategies []capitalgains.LotSelectionResult `json:"strategies"`
	}
	decodeInto(t, rec, &body)
	require.Len(t, body.Strategies, 2)
	assert.Equal(t, "fifo", body.Strategies[0].Method)
	assert.Equal(t, "lifo", body.Strategies[1].Method)
	// FIFO sells the long-term lot, LIFO the short-term one.
	assert.Equal(t, "2500.00", body.Strategies[0].TotalGainLoss.String())
	assert.Equal(t, "1000.00", body.Strategies[1].TotalGainLoss.String())
}

func TestWashSaleCheckEndpoint(t *testing.T) {
	srv := newTestServer(t)

	sales, purchases := testingpkg.NewWashSaleFixtures()
	rec := doJSON(t, srv, http.MethodPost, "/api/wash-sales/check", map[string]interface{}{
		"sales":     sales,
		"purchases": purchases,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result washsale.CheckResult
	decodeInto(t, rec, &result)
	assert.False(t, result.Compliant)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "1200.00", result.TotalDisallowed.String())
	assert.Equal(t, "2025-04-15", result.Violations[0].PurchaseDate.String())
}

func TestWashSaleWouldTriggerEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/wash-sales/would-trigger", map[string]interface{}{
		"symbol":             "VTI",
		"proposed_sale_date": "2025-03-31",
		"recent_purchases": []map[string]interface{}{
			{"symbol": "VTI", "date": "2025-05-15", "quantity": 100, "cost": 19000},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		WouldTrigger           bool   `json:"would_trigger"`
		EarliestSafeRepurchase string `json:"earliest_safe_repurchase_date"`
	}
	decodeInto(t, rec, &body)
	assert.False(t, body.WouldTrigger)
	assert.Equal(t, "2025-05-01", body.EarliestSafeRepurchase)
}

func TestAmtEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/amt/calculate", map[string]interface{}{
		"filing_status":             "single",
		"taxable_income":            450000,
		"state_local_tax_deduction": 10000,
		"iso_bargain_element":       150000,
		"regular_tax":               145000,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result amt.Result
	decodeInto(t, rec, &result)
	assert.Equal(t, "610000.00", result.AMTI.String())
	assert.Equal(t, "85537.50", result.Exemption.String())
	assert.Equal(t, "142197.50", result.TentativeMinimumTax.String())
	assert.Equal(t, "0.00", result.AmtOwed.String())
	assert.False(t, result.IsSubjectToAmt)
}

func TestAmtEndpointUnknownStatus(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/amt/calculate", map[string]interface{}{
		"filing_status":  "qualifying_widow",
		"taxable_income": 100000,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAmtEndpointUnknownYear(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/amt/calculate", map[string]interface{}{
		"year":           1999,
		"filing_status":  "single",
		"taxable_income": 100000,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEstimatesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/estimates/quarterly", map[string]interface{}{
		"filing_status": "single",
		"as_of":         "2025-01-01",
		"income": map[string]interface{}{
			"self_employment": 100000,
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var result estimates.Result
	decodeInto(t, rec, &result)
	assert.Equal(t, "14129.55", result.SelfEmploymentTax.String())
	assert.Equal(t, "27970.55", result.ProjectedLiability.String())
	require.Len(t, result.Quarters, 4)
	assert.Equal(t, "6992.64", result.Quarters[0].RequiredPayment.String())
	assert.Equal(t, "6992.63", result.Quarters[3].RequiredPayment.String())
}

func TestEstimatesEndpointRequiresAsOf(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/estimates/quarterly", map[string]interface{}{
		"filing_status": "single",
		"income":        map[string]interface{}{"wages": 50000},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaxParamsEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/tax-params/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Years []int `json:"years"`
	}
	decodeInto(t, rec, &listing)
	assert.Contains(t, listing.Years, taxparams.DefaultYear)

	rec = doJSON(t, srv, http.MethodGet, "/api/tax-params/2025", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var params taxparams.YearParams
	decodeInto(t, rec, &params)
	assert.Equal(t, 2025, params.Year)

	rec = doJSON(t, srv, http.MethodGet, "/api/tax-params/1999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tax-params/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSystemStatusEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decodeInto(t, rec, &body)
	assert.Contains(t, body, "uptime_seconds")
	assert.Contains(t, body, "databases")
}
