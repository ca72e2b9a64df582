package domain

import "errors"

// Domain errors are pure and carry no infrastructure context.
// The engines are total functions: insufficient lot quantity, absent
// wash-sale matches and zero AMT liability are results, not errors.
// The only failure classes are arithmetic overflow and unknown
// parameter-table keys.
var (
	// ErrArithmeticOverflow is returned when a monetary amount exceeds the
	// representable integer-cents range. Never silent wraparound.
	ErrArithmeticOverflow = errors.New("monetary amount overflows integer cents")

	// ErrUnknownFilingStatus is returned by the parameter store for a
	// filing status outside the four recognized values.
	ErrUnknownFilingStatus = errors.New("unknown filing status")

	// ErrYearNotConfigured is returned when no parameter table exists for
	// the requested tax year.
	ErrYearNotConfigured = errors.New("tax year not configured")
)
