// Package estimates projects full-year federal tax liability and derives the
// four quarterly estimated-payment obligations, their payment status as of a
// caller-supplied date, and safe-harbor/underpayment assessments.
package estimates

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/taxfolio/internal/domain"
	"github.com/aristath/taxfolio/internal/money"
	"github.com/aristath/taxfolio/internal/taxparams"
)

// IncomeSummary aggregates projected annual income by category.
// WithholdingToDate counts toward the safe harbor but is not an estimated
// payment.
type IncomeSummary struct {
	Wages             money.Money `json:"wages"`
	SelfEmployment    money.Money `json:"self_employment"`
	Investment        money.Money `json:"investment"`
	Other             money.Money `json:"other"`
	WithholdingToDate money.Money `json:"withholding_to_date"`
}

// Total returns the summed projected annual income.
func (s IncomeSummary) Total() money.Money {
	return money.Sum(s.Wages, s.SelfEmployment, s.Investment, s.Other)
}

// Payment is one estimated-tax payment already made.
type Payment struct {
	Date   domain.Date `json:"date"`
	Amount money.Money `json:"amount"`
}

// Quarter is one of the four fixed-date obligations.
type Quarter struct {
	Number          int                  `json:"number"`
	DueDate         domain.Date          `json:"due_date"`
	RequiredPayment money.Money          `json:"required_payment"`
	AmountPaid      money.Money          `json:"amount_paid"`
	Status          domain.QuarterStatus `json:"status"`
}

// Input is one projection request. AsOf drives quarter status; it is always
// caller-supplied so the computation never reads the wall clock.
type Input struct {
	FilingStatus domain.FilingStatus `json:"filing_status"`
	Income       IncomeSummary       `json:"income"`
	PriorYearTax money.Money         `json:"prior_year_tax"`
	Payments     []Payment           `json:"payments"`
	AsOf         domain.Date         `json:"as_of"`
}

// Result is the derived quarterly schedule and risk assessment.
type Result struct {
	Year                 int                     `json:"year"`
	FilingStatus         domain.FilingStatus     `json:"filing_status"`
	TotalIncome          money.Money             `json:"total_income"`
	SelfEmploymentTax    money.Money             `json:"self_employment_tax"`
	ProjectedLiability   money.Money             `json:"projected_liability"`
	SafeHarborAmount     money.Money             `json:"safe_harbor_amount"`
	SafeHarborMet        bool                    `json:"safe_harbor_met"`
	Quarters             []Quarter               `json:"quarters"`
	TotalPaid            money.Money             `json:"total_paid"`
	UnderpaymentRisk     domain.UnderpaymentRisk `json:"underpayment_risk"`
	SuggestedNextPayment money.Money             `json:"suggested_next_payment"`
	NextDueDate          *domain.Date            `json:"next_due_date,omitempty"`
}

// Engine projects quarterly estimates against a year's parameter table.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a quarterly estimate engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("service", "estimates").Logger()}
}

// Calculate derives the quarterly schedule. Always produces exactly four
// quarters; an empty income summary yields a schedule of zero obligations,
// not an error.
func (e *Engine) Calculate(input Input, params *taxparams.YearParams) (Result, error) {
	totalIncome := input.Income.Total()

	seTax := selfEmploymentTax(input.Income.SelfEmployment, params.SelfEmployment)

	deduction, err := params.DeductionFor(input.FilingStatus)
	if err != nil {
		return Result{}, err
	}
	taxable := totalIncome.Sub(deduction).ClampMin(money.Zero())
	incomeTax, err := params.OrdinaryTax(input.FilingStatus, taxable)
	if err != nil {
		return Result{}, err
	}
	projected := incomeTax.Add(seTax)

	safeHarbor := safeHarborAmount(projected, input.PriorYearTax, totalIncome, input.FilingStatus, params)

	// Estimated payments must cover the projected liability not met by
	// withholding, in four installments. The last installment absorbs the
	// rounding remainder so the four sum exactly.
	requiredTotal := projected.Sub(input.Income.WithholdingToDate).ClampMin(money.Zero())
	installment := requiredTotal.Scale(1, 4)
	lastInstallment := requiredTotal.Sub(installment.MulFactor(3))

	quarters := make([]Quarter, 4)
	for i := range quarters {
		required := installment
		if i == 3 {
			required = lastInstallment
		}
		quarters[i] = Quarter{
			Number:          i + 1,
			DueDate:         params.QuarterDueDates[i],
			RequiredPayment: required,
		}
	}

	totalPaid := applyPayments(quarters, input.Payments)
	overdue := 0
	for i := range quarters {
		quarters[i].Status = quarterStatus(quarters[i], input.AsOf)
		if quarters[i].Status == domain.QuarterOverdue {
			overdue++
		}
	}

	cumulative := totalPaid.Add(input.Income.WithholdingToDate)
	result := Result{
		Year:               params.Year,
		FilingStatus:       input.FilingStatus,
		TotalIncome:        totalIncome,
		SelfEmploymentTax:  seTax,
		ProjectedLiability: projected,
		SafeHarborAmount:   safeHarbor,
		SafeHarborMet:      !cumulative.LessThan(safeHarbor),
		Quarters:           quarters,
		TotalPaid:          totalPaid,
		UnderpaymentRisk:   riskTier(overdue),
	}

	for i := range quarters {
		if quarters[i].Status == domain.QuarterPaid {
			continue
		}
		due := quarters[i].DueDate
		result.NextDueDate = &due
		result.SuggestedNextPayment = quarters[i].RequiredPayment.Sub(quarters[i].AmountPaid).ClampMin(money.Zero())
		break
	}

	e.log.Debug().
		Int("year", params.Year).
		Str("projected", projected.String()).
		Int("overdue", overdue).
		Msg("Calculated quarterly estimates")

	return result, nil
}

// selfEmploymentTax applies the SE constants: the net-earnings factor, the
// social-security portion capped at the wage base, and uncapped medicare.
func selfEmploymentTax(seIncome money.Money, p taxparams.SelfEmploymentParams) money.Money {
	if !seIncome.IsPositive() {
		return money.Zero()
	}
	netEarnings := seIncome.MulRate(p.NetEarningsFactor)
	socialSecurity := money.Min(netEarnings, p.WageBase).MulRate(p.SocialSecurityRate)
	medicare := netEarnings.MulRate(p.MedicareRate)
	return socialSecurity.Add(medicare)
}

// safeHarborAmount is the smaller of the current-year factor applied to the
// projection and the prior-year factor applied to last year's tax, with the
// higher prior-year factor above the AGI threshold.
func safeHarborAmount(projected, priorYearTax, totalIncome money.Money, status domain.FilingStatus, params *taxparams.YearParams) money.Money {
	current := projected.MulFactor(params.SafeHarbor.CurrentYearFactor)

	priorFactor := params.SafeHarbor.PriorYearFactor
	if totalIncome.GreaterThan(params.SafeHarborThreshold(status)) {
		priorFactor = params.SafeHarbor.PriorYearFactorHighAGI
	}
	prior := priorYearTax.MulFactor(priorFactor)

	return money.Min(current, prior)
}

// applyPayments allocates payments to quarters in due-date order. A payment
// counts toward a quarter only if dated on or before that quarter's due
// date; anything left over spills into later quarters. Returns total paid.
func applyPayments(quarters []Quarter, payments []Payment) money.Money {
	ordered := append([]Payment(nil), payments...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date.Time)
	})

	total := money.Zero()
	for _, p := range ordered {
		total = total.Add(p.Amount)
	}

	remaining := ordered
	for i := range quarters {
		needed := quarters[i].RequiredPayment
		var unapplied []Payment
		for _, p := range remaining {
			if p.Date.After(quarters[i].DueDate.Time) {
				// Too late for this quarter; eligible for later ones.
				unapplied = append(unapplied, p)
				continue
			}
			if quarters[i].AmountPaid.LessThan(needed) {
				shortfall := needed.Sub(quarters[i].AmountPaid)
				applied := money.Min(p.Amount, shortfall)
				quarters[i].AmountPaid = quarters[i].AmountPaid.Add(applied)
				leftover := p.Amount.Sub(applied)
				if leftover.IsPositive() {
					unapplied = append(unapplied, Payment{Date: p.Date, Amount: leftover})
				}
			} else {
				unapplied = append(unapplied, p)
			}
		}
		remaining = unapplied
	}

	return total
}

// quarterStatus evaluates one quarter against the as-of date. A quarter
// whose obligation is fully covered is paid regardless of the as-of date;
// otherwise it is overdue once its due date has passed.
func quarterStatus(q Quarter, asOf domain.Date) domain.QuarterStatus {
	if !q.AmountPaid.LessThan(q.RequiredPayment) {
		return domain.QuarterPaid
	}
	if asOf.After(q.DueDate.Time) {
		return domain.QuarterOverdue
	}
	return domain.QuarterUpcoming
}

// riskTier maps the overdue-quarter count to an underpayment tier.
func riskTier(overdue int) domain.UnderpaymentRisk {
	switch {
	case overdue == 0:
		return domain.RiskLow
	case overdue == 1:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}
