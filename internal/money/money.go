// Package money implements exact-cents dollar arithmetic for the tax engines.
//
// Every operation rounds its result to the nearest cent immediately, so
// sub-cent error never accumulates across chained operations: 0.10 + 0.20 is
// exactly 0.30 regardless of how the operands were produced. Amounts are
// backed by arbitrary-precision decimals, so arithmetic itself cannot
// overflow; only conversion to integer cents can, and that is surfaced as
// domain.ErrArithmeticOverflow rather than wraparound.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aristath/taxfolio/internal/domain"
)

// Money is a dollar amount held at cent precision.
// The zero value is $0.00 and is ready to use.
type Money struct {
	d decimal.Decimal
}

// Zero returns $0.00.
func Zero() Money {
	return Money{}
}

// FromFloat converts a float dollar amount, rounding to the nearest cent.
func FromFloat(f float64) Money {
	return Money{decimal.NewFromFloat(f).Round(2)}
}

// FromCents converts an integer number of cents.
func FromCents(c int64) Money {
	return Money{decimal.New(c, -2)}
}

// FromDecimal converts an arbitrary decimal, rounding to the nearest cent.
func FromDecimal(d decimal.Decimal) Money {
	return Money{d.Round(2)}
}

// Parse converts a decimal string such as "1234.56".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return Money{d.Round(2)}, nil
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{m.d.Add(o.d).Round(2)}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{m.d.Sub(o.d).Round(2)}
}

// Neg returns -m.
func (m Money) Neg() Money {
	return Money{m.d.Neg()}
}

// Abs returns the absolute value of m.
func (m Money) Abs() Money {
	return Money{m.d.Abs()}
}

// MulFactor returns m scaled by an unconstrained real factor, rounded to the
// nearest cent. Used for price-times-quantity style computations.
func (m Money) MulFactor(f float64) Money {
	return Money{m.d.Mul(decimal.NewFromFloat(f)).Round(2)}
}

// MulRate returns m scaled by a rate, rounded to the nearest cent. Rates
// outside [0, 1] are clamped; tax rates are never negative and never exceed
// the whole amount.
func (m Money) MulRate(r float64) Money {
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	return m.MulFactor(r)
}

// Scale returns m multiplied by num/den in a single decimal operation,
// rounded once at the end. This is the apportionment primitive: basis for a
// partial lot is lotBasis.Scale(consumedQty, lotQty), never a per-share
// float division followed by a multiply, which loses cents on uneven splits.
// A zero denominator yields $0.00.
func (m Money) Scale(num, den float64) Money {
	if den == 0 {
		return Zero()
	}
	n := decimal.NewFromFloat(num)
	d := decimal.NewFromFloat(den)
	return Money{m.d.Mul(n).Div(d).Round(2)}
}

// Sum adds a sequence of amounts. Exact for any length: N amounts summing to
// X in exact cents return X regardless of N.
func Sum(amounts ...Money) Money {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a.d)
	}
	return Money{total.Round(2)}
}

// ClampMin returns m, raised to min if it is below it. ClampMin(Zero()) is
// the usual "never negative" rule in tax computations.
func (m Money) ClampMin(min Money) Money {
	if m.d.LessThan(min.d) {
		return min
	}
	return m
}

// RoundDollars rounds to the nearest whole dollar, half away from zero,
// matching the IRS whole-dollar reporting convention.
func (m Money) RoundDollars() Money {
	return Money{m.d.Round(0)}
}

// Cents converts to an integer number of cents. Amounts beyond the int64
// range return domain.ErrArithmeticOverflow.
func (m Money) Cents() (int64, error) {
	shifted := m.d.Round(2).Shift(2)
	bi := shifted.BigInt()
	if !bi.IsInt64() {
		return 0, fmt.Errorf("%s: %w", m.d.StringFixed(2), domain.ErrArithmeticOverflow)
	}
	return bi.Int64(), nil
}

// Float64 returns the amount as a float. Lossy for very large amounts; use
// Cents or String where exactness matters.
func (m Money) Float64() float64 {
	f, _ := m.d.Float64()
	return f
}

// Decimal returns the underlying decimal value.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// IsZero reports whether m is exactly $0.00.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsNegative reports whether m is below zero.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// IsPositive reports whether m is above zero.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// Equal reports exact cent equality.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// LessThan reports m < o.
func (m Money) LessThan(o Money) bool {
	return m.d.LessThan(o.d)
}

// GreaterThan reports m > o.
func (m Money) GreaterThan(o Money) bool {
	return m.d.GreaterThan(o.d)
}

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if a.d.LessThan(b.d) {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max(a, b Money) Money {
	if a.d.GreaterThan(b.d) {
		return a
	}
	return b
}

// String formats the amount with two decimal places.
func (m Money) String() string {
	return m.d.StringFixed(2)
}

// MarshalJSON encodes the amount as a JSON number with two decimal places.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.d.StringFixed(2)), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*m = Zero()
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	m.d = d.Round(2)
	return nil
}
