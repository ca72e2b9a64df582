package amt

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/taxfolio/internal/database"
	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/money"
	"github.com/aristath/taxfolio/internal/taxparams"
)

var memCounter int

func params2025(t *testing.T) *taxparams.YearParams {
	t.Helper()

	memCounter++
	db, err := database.New(database.Config{
		Path: fmt.Sprintf("file:amt_test_%d?mode=memory&cache=shared", memCounter),
		Name: "amt-test",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := taxparams.NewStore(db, zerolog.Nop())
	require.NoError(t, err)
	params, err := store.Year(2025)
	require.NoError(t, err)
	return params
}

func testCalculator() *Calculator {
	return NewCalculator(zerolog.Nop())
}

// The worked single-filer example: $600,000 taxable income with a $10,000
// SALT add-back lands just above the phase-out start.
func TestCompute_SingleWorkedExample(t *testing.T) {
	params := params2025(t)

	result, err := testCalculator().Compute(Input{
		FilingStatus:           domain.FilingSingle,
		TaxableIncome:          money.FromFloat(600000),
		StateLocalTaxDeduction: money.FromFloat(10000),
		RegularTax:             money.FromFloat(150000),
	}, params)
	require.NoError(t, err)

	assert.Equal(t, "610000.00", result.AMTI.String())
	// Excess over 609,350 is 650; exemption drops by 25% of that
	assert.Equal(t, "85537.50", result.Exemption.String())
	assert.Equal(t, "524462.50", result.AmtBase.String())
	// 26% of 232,600 + 28% of 291,862.50 = 60,476 + 81,721.50
	assert.Equal(t, "142197.50", result.TentativeMinimumTax.String())
	// Below regular tax: no AMT
	assert.Equal(t, "0.00", result.AmtOwed.String())
	assert.False(t, result.IsSubjectToAmt)
}

func TestCompute_SubjectToAmtWhenTentativeExceedsRegular(t *testing.T) {
	params := params2025(t)

	result, err := testCalculator().Compute(Input{
		FilingStatus:           domain.FilingSingle,
		TaxableIncome:          money.FromFloat(600000),
		StateLocalTaxDeduction: money.FromFloat(10000),
		RegularTax:             money.FromFloat(100000),
	}, params)
	require.NoError(t, err)

	assert.Equal(t, "42197.50", result.AmtOwed.String())
	assert.True(t, result.IsSubjectToAmt)
}

func TestCompute_BelowPhaseoutKeepsFullExemption(t *testing.T) {
	params := params2025(t)

	result, err := testCalculator().Compute(Input{
		FilingStatus:  domain.FilingSingle,
		TaxableIncome: money.FromFloat(200000),
		RegularTax:    money.FromFloat(40000),
	}, params)
	require.NoError(t, err)

	assert.Equal(t, "85700.00", result.Exemption.String())
	// Base 114,300, entirely in the 26% bracket
	assert.Equal(t, "114300.00", result.AmtBase.String())
	assert.Equal(t, "29718.00", result.TentativeMinimumTax.String())
}

func TestCompute_ExemptionNeverNegative(t *testing.T) {
	params := params2025(t)

	result, err := testCalculator().Compute(Input{
		FilingStatus:  domain.FilingSingle,
		TaxableIncome: money.FromFloat(5000000),
		RegularTax:    money.FromFloat(0),
	}, params)
	require.NoError(t, err)

	assert.Equal(t, "0.00", result.Exemption.String())
	assert.Equal(t, result.AMTI.String(), result.AmtBase.String())
}

func TestCompute_ExemptionMonotonicallyNonIncreasing(t *testing.T) {
	params := params2025(t)
	calc := testCalculator()

	prev := money.FromFloat(1e12)
	for income := 550000.0; income <= 1100000; income += 25000 {
		result, err := calc.Compute(Input{
			FilingStatus:  domain.FilingSingle,
			TaxableIncome: money.FromFloat(income),
		}, params)
		require.NoError(t, err)

		assert.False(t, result.Exemption.GreaterThan(prev),
			"exemption rose between AMTI steps at income %.0f", income)
		assert.False(t, result.Exemption.IsNegative())
		prev = result.Exemption
	}
}

func TestCompute_NotSubjectWheneverTentativeAtMostRegular(t *testing.T) {
	params := params2025(t)
	calc := testCalculator()

	for _, status := range []domain.FilingStatus{
		domain.FilingSingle,
		domain.FilingMarriedJoint,
		domain.FilingMarriedSeparate,
		domain.FilingHeadOfHousehold,
	} {
		result, err := calc.Compute(Input{
			FilingStatus:  status,
			TaxableIncome: money.FromFloat(300000),
			RegularTax:    money.FromFloat(1e9), // regular tax dwarfs tentative
		}, params)
		require.NoError(t, err)
		assert.False(t, result.IsSubjectToAmt, "status %s", status)
		assert.Equal(t, "0.00", result.AmtOwed.String())
	}
}

func TestCompute_AllAdjustmentsAdditive(t *testing.T) {
	params := params2025(t)

	result, err := testCalculator().Compute(Input{
		FilingStatus:                domain.FilingMarriedJoint,
		TaxableIncome:               money.FromFloat(100000),
		StateLocalTaxDeduction:      money.FromFloat(10000),
		PrivateActivityBondInterest: money.FromFloat(2500),
		ISOBargainElement:           money.FromFloat(40000),
		OtherAdjustments:            money.FromFloat(1500),
	}, params)
	require.NoError(t, err)

	assert.Equal(t, "154000.00", result.AMTI.String())
}

func TestCompute_ZeroInput(t *testing.T) {
	params := params2025(t)

	result, err := testCalculator().Compute(Input{FilingStatus: domain.FilingSingle}, params)
	require.NoError(t, err)

	assert.True(t, result.AMTI.IsZero())
	assert.True(t, result.AmtBase.IsZero())
	assert.False(t, result.IsSubjectToAmt)
}

func TestCompute_UnknownFilingStatus(t *testing.T) {
	params := params2025(t)

	_, err := testCalculator().Compute(Input{FilingStatus: "widowed"}, params)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownFilingStatus))
}
