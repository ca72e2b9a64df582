package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, 3, 31)

	assert.Equal(t, 15, d.DaysUntil(NewDate(2025, 4, 15)))
	assert.Equal(t, -15, NewDate(2025, 4, 15).DaysUntil(d))
	assert.Equal(t, 15, d.DaysApart(NewDate(2025, 4, 15)))
	assert.Equal(t, 15, NewDate(2025, 4, 15).DaysApart(d))

	assert.Equal(t, "2025-05-01", d.AddDays(31).String())
	assert.Equal(t, "2025-03-01", NewDate(2025, 2, 28).AddDays(1).String())
}

func TestDateOfTruncatesTimeOfDay(t *testing.T) {
	ts := time.Date(2025, 6, 2, 23, 45, 0, 0, time.UTC)
	assert.Equal(t, "2025-06-02", DateOf(ts).String())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15", d.String())

	_, err = ParseDate("01/15/2025")
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	out, err := json.Marshal(NewDate(2025, 4, 15))
	require.NoError(t, err)
	assert.Equal(t, `"2025-04-15"`, string(out))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-04-15"`), &d))
	assert.Equal(t, "2025-04-15", d.String())

	// Timestamps from upstream systems still resolve to a calendar date.
	require.NoError(t, json.Unmarshal([]byte(`"2025-04-15T18:30:00Z"`), &d))
	assert.Equal(t, "2025-04-15", d.String())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}

func TestFilingStatusValid(t *testing.T) {
	for _, status := range []FilingStatus{
		FilingSingle, FilingMarriedJoint, FilingMarriedSeparate, FilingHeadOfHousehold,
	} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, FilingStatus("qualifying_widow").Valid())
	assert.False(t, FilingStatus("").Valid())
}
