// Package taxparams holds the versioned federal tax-parameter tables the
// engines compute against. Tables are keyed by tax year and filing status
// and live as data, not code: a new tax year is a row insert, never an
// algorithm change. The sqlite-backed Store seeds itself from embedded
// defaults and hands plain structs to the engines, which stay pure.
package taxparams

import (
	"fmt"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/money"
)

// DefaultYear is the tax year assumed when a request does not name one.
const DefaultYear = 2025

// AmtParams holds the AMT exemption figures for one filing status.
type AmtParams struct {
	Exemption        money.Money `json:"exemption"`
	PhaseoutStart    money.Money `json:"phaseout_start"`
	BracketThreshold money.Money `json:"bracket_threshold"`
}

// Bracket is one marginal ordinary-income bracket. A nil UpTo marks the top
// bracket (no ceiling).
type Bracket struct {
	Rate float64      `json:"rate"`
	UpTo *money.Money `json:"up_to,omitempty"`
}

// SelfEmploymentParams holds the SE tax constants.
type SelfEmploymentParams struct {
	NetEarningsFactor  float64     `json:"net_earnings_factor"` // portion of SE income subject to SE tax
	SocialSecurityRate float64     `json:"social_security_rate"`
	MedicareRate       float64     `json:"medicare_rate"`
	WageBase           money.Money `json:"wage_base"` // social-security portion cap
}

// SafeHarborParams holds the estimated-payment safe-harbor thresholds.
type SafeHarborParams struct {
	CurrentYearFactor        float64     `json:"current_year_factor"`          // 90% of projected liability
	PriorYearFactor          float64     `json:"prior_year_factor"`            // 100% of prior-year tax
	PriorYearFactorHighAGI   float64     `json:"prior_year_factor_high_agi"`   // 110% above the threshold
	HighAGIThreshold         money.Money `json:"high_agi_threshold"`
	HighAGIThresholdSeparate money.Money `json:"high_agi_threshold_separate"` // halved for married filing separately
}

// YearParams is the complete parameter table for one tax year.
type YearParams struct {
	Year              int                                    `json:"year"`
	Amt               map[domain.FilingStatus]AmtParams      `json:"amt"`
	AmtLowRate        float64                                `json:"amt_low_rate"`
	AmtHighRate       float64                                `json:"amt_high_rate"`
	AmtPhaseoutRate   float64                                `json:"amt_phaseout_rate"`
	OrdinaryBrackets  map[domain.FilingStatus][]Bracket      `json:"ordinary_brackets"`
	StandardDeduction map[domain.FilingStatus]money.Money    `json:"standard_deduction"`
	SelfEmployment    SelfEmploymentParams                   `json:"self_employment"`
	SafeHarbor        SafeHarborParams                       `json:"safe_harbor"`
	QuarterDueDates   [4]domain.Date                         `json:"quarter_due_dates"`
}

// AmtFor returns the AMT parameters for a filing status.
func (p *YearParams) AmtFor(status domain.FilingStatus) (AmtParams, error) {
	if !status.Valid() {
		return AmtParams{}, fmt.Errorf("%q: %w", status, domain.ErrUnknownFilingStatus)
	}
	params, ok := p.Amt[status]
	if !ok {
		return AmtParams{}, fmt.Errorf("no AMT parameters for %q in %d: %w", status, p.Year, domain.ErrYearNotConfigured)
	}
	return params, nil
}

// BracketsFor returns the ordinary-income brackets for a filing status.
func (p *YearParams) BracketsFor(status domain.FilingStatus) ([]Bracket, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%q: %w", status, domain.ErrUnknownFilingStatus)
	}
	brackets, ok := p.OrdinaryBrackets[status]
	if !ok {
		return nil, fmt.Errorf("no brackets for %q in %d: %w", status, p.Year, domain.ErrYearNotConfigured)
	}
	return brackets, nil
}

// DeductionFor returns the standard deduction for a filing status.
func (p *YearParams) DeductionFor(status domain.FilingStatus) (money.Money, error) {
	if !status.Valid() {
		return money.Zero(), fmt.Errorf("%q: %w", status, domain.ErrUnknownFilingStatus)
	}
	return p.StandardDeduction[status], nil
}

// SafeHarborThreshold returns the AGI level above which the higher
// prior-year factor applies for the given status.
func (p *YearParams) SafeHarborThreshold(status domain.FilingStatus) money.Money {
	if status == domain.FilingMarriedSeparate {
		return p.SafeHarbor.HighAGIThresholdSeparate
	}
	return p.SafeHarbor.HighAGIThreshold
}

// OrdinaryTax computes regular tax on taxable income by walking the marginal
// brackets for the given status. Negative income yields zero tax.
func (p *YearParams) OrdinaryTax(status domain.FilingStatus, taxable money.Money) (money.Money, error) {
	brackets, err := p.BracketsFor(status)
	if err != nil {
		return money.Zero(), err
	}

	taxable = taxable.ClampMin(money.Zero())
	tax := money.Zero()
	floor := money.Zero()
	for _, b := range brackets {
		if b.UpTo == nil || taxable.LessThan(*b.UpTo) {
			tax = tax.Add(taxable.Sub(floor).MulRate(b.Rate))
			return tax, nil
		}
		tax = tax.Add(b.UpTo.Sub(floor).MulRate(b.Rate))
		floor = *b.UpTo
	}
	// Bracket tables always end with an uncapped bracket; reaching here
	// means the table is malformed.
	return tax, fmt.Errorf("bracket table for %q in %d has no top bracket", status, p.Year)
}
