// Package domain contains pure value types shared by the tax engines.
// It has no infrastructure dependencies; every engine consumes and returns
// these types by value.
package domain

// FilingStatus identifies a U.S. federal individual filing status.
// Parameter tables (AMT exemptions, ordinary brackets, standard deductions)
// are keyed by tax year and filing status.
type FilingStatus string

const (
	FilingSingle           FilingStatus = "single"
	FilingMarriedJoint     FilingStatus = "married_filing_jointly"
	FilingMarriedSeparate  FilingStatus = "married_filing_separately"
	FilingHeadOfHousehold  FilingStatus = "head_of_household"
)

// Valid reports whether the status is one of the four recognized values.
func (s FilingStatus) Valid() bool {
	switch s {
	case FilingSingle, FilingMarriedJoint, FilingMarriedSeparate, FilingHeadOfHousehold:
		return true
	}
	return false
}

// HoldingPeriod classifies a position's holding period for capital gains.
type HoldingPeriod string

const (
	ShortTerm HoldingPeriod = "short_term"
	LongTerm  HoldingPeriod = "long_term"
)

// UnderpaymentRisk is a tiered classification of estimated-tax underpayment
// exposure, driven by the number of overdue quarters.
type UnderpaymentRisk string

const (
	RiskLow    UnderpaymentRisk = "low"
	RiskMedium UnderpaymentRisk = "medium"
	RiskHigh   UnderpaymentRisk = "high"
)

// QuarterStatus is the payment state of a single estimated-tax quarter.
type QuarterStatus string

const (
	QuarterUpcoming QuarterStatus = "upcoming"
	QuarterPaid     QuarterStatus = "paid"
	QuarterOverdue  QuarterStatus = "overdue"
)
