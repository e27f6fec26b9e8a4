package timesheet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"timetracker.com/timetracker/model"
)

func TestValidateHours(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		ok    bool
	}{
		{name: "Zero", value: 0, ok: true},
		{name: "Half hour", value: 0.5, ok: true},
		{name: "Working day", value: 7.5, ok: true},
		{name: "Full day", value: 24, ok: true},
		{name: "Negative", value: -0.5, ok: false},
		{name: "Above a day", value: 24.5, ok: false},
		{name: "Quarter hour", value: 7.25, ok: false},
		{name: "NaN", value: math.NaN(), ok: false},
		{name: "Infinity", value: math.Inf(1), ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHours(tt.value)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestDayHoursValidateNamesField(t *testing.T) {
	err := DayHours{Monday: 8, Thursday: 30}.Validate()
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "thursday", ve.Field)
}

func TestDailyTotalIgnoresStoredTotal(t *testing.T) {
	ts := model.Timesheet{
		MondayHours:    8,
		TuesdayHours:   7.5,
		WednesdayHours: 8,
		ThursdayHours:  0,
		FridayHours:    4,
		TotalHours:     999,
	}
	assert.Equal(t, 27.5, DailyTotal(ts))
}

func TestWeeklyProjectTotal(t *testing.T) {
	tests := []struct {
		name     string
		hours    map[Day]float64
		expected float64
	}{
		{name: "Empty", hours: map[Day]float64{}, expected: 0},
		{name: "Nil", hours: nil, expected: 0},
		{name: "Partial", hours: map[Day]float64{Monday: 8, Friday: 2.5}, expected: 10.5},
		{name: "Full week", hours: DayHours{8, 8, 8, 8, 8}.Map(), expected: 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WeeklyProjectTotal(tt.hours))
		})
	}
}
