// Package amt computes alternative minimum tax: AMTI, exemption phase-out,
// the two-bracket tentative minimum tax and the final AMT owed on top of
// regular tax. All figures come from the injected year parameter table.
package amt

import (
	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/money"
	"github.com/aristath/taxfolio/internal/taxparams"
)

// Input holds the regular-tax figures and AMT preference/adjustment items
// for one filing. Missing optional items default to zero.
type Input struct {
	FilingStatus                domain.FilingStatus `json:"filing_status"`
	TaxableIncome               money.Money         `json:"taxable_income"`
	StateLocalTaxDeduction      money.Money         `json:"state_local_tax_deduction"`
	PrivateActivityBondInterest money.Money         `json:"private_activity_bond_interest"`
	ISOBargainElement           money.Money         `json:"iso_bargain_element"`
	OtherAdjustments            money.Money         `json:"other_adjustments"`
	RegularTax                  money.Money         `json:"regular_tax"`
}

// Result is the full AMT computation trace. Intermediate stages are
// reported so a filing can be audited line by line.
type Result struct {
	FilingStatus        domain.FilingStatus `json:"filing_status"`
	AMTI                money.Money         `json:"amti"`
	Exemption           money.Money         `json:"exemption"`
	AmtBase             money.Money         `json:"amt_base"`
	TentativeMinimumTax money.Money         `json:"tentative_minimum_tax"`
	RegularTax          money.Money         `json:"regular_tax"`
	AmtOwed             money.Money         `json:"amt_owed"`
	IsSubjectToAmt      bool                `json:"is_subject_to_amt"`
}

// Calculator computes AMT against a year's parameter table.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates an AMT calculator.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{log: log.With().Str("service", "amt").Logger()}
}

// Compute runs the five AMT stages. Zero AMT liability is a normal result;
// the only error path is an unknown filing status in the parameter table.
func (c *Calculator) Compute(input Input, params *taxparams.YearParams) (Result, error) {
	amtParams, err := params.AmtFor(input.FilingStatus)
	if err != nil {
		return Result{}, err
	}

	// Stage 1: AMTI. All preference items add back; nothing subtracts here.
	amti := money.Sum(
		input.TaxableIncome,
		input.StateLocalTaxDeduction,
		input.PrivateActivityBondInterest,
		input.ISOBargainElement,
		input.OtherAdjustments,
	)

	// Stage 2: exemption phase-out. Above the start, the exemption shrinks
	// by 25 cents per excess dollar, never below zero.
	exemption := amtParams.Exemption
	if amti.GreaterThan(amtParams.PhaseoutStart) {
		excess := amti.Sub(amtParams.PhaseoutStart)
		exemption = exemption.Sub(excess.MulRate(params.AmtPhaseoutRate)).ClampMin(money.Zero())
	}

	// Stage 3: AMT base.
	base := amti.Sub(exemption).ClampMin(money.Zero())

	// Stage 4: tentative minimum tax, two marginal brackets. The higher
	// rate applies only to the excess over the threshold.
	var tentative money.Money
	if base.GreaterThan(amtParams.BracketThreshold) {
		tentative = amtParams.BracketThreshold.MulRate(params.AmtLowRate).
			Add(base.Sub(amtParams.BracketThreshold).MulRate(params.AmtHighRate))
	} else {
		tentative = base.MulRate(params.AmtLowRate)
	}

	// Stage 5: AMT owed is the excess over regular tax, if any.
	owed := tentative.Sub(input.RegularTax).ClampMin(money.Zero())

	result := Result{
		FilingStatus:        input.FilingStatus,
		AMTI:                amti,
		Exemption:           exemption,
		AmtBase:             base,
		TentativeMinimumTax: tentative,
		RegularTax:          input.RegularTax,
		AmtOwed:             owed,
		IsSubjectToAmt:      owed.IsPositive(),
	}

	c.log.Debug().
		Str("status", string(input.FilingStatus)).
		Str("amti", amti.String()).
		Str("owed", owed.String()).
		Msg("Computed AMT")

	return result, nil
}
