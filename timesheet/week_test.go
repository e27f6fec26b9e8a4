package timesheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestISOWeekOfAcrossYearBoundary(t *testing.T) {
	tests := []struct {
		name     string
		at       time.Time
		expected Week
	}{
		{name: "Monday of week 53", at: date(2020, time.December, 28), expected: Week{Number: 53, Year: 2020}},
		{name: "New year's day 2021 still in 2020", at: date(2021, time.January, 1), expected: Week{Number: 53, Year: 2020}},
		{name: "First ISO week of 2021", at: date(2021, time.January, 4), expected: Week{Number: 1, Year: 2021}},
		{name: "Late December in next ISO year", at: date(2024, time.December, 30), expected: Week{Number: 1, Year: 2025}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ISOWeekOf(tt.at))
		})
	}
}

func TestWeekStart(t *testing.T) {
	assert.Equal(t, date(2020, time.December, 28), WeekStart(53, 2020, time.UTC))
	assert.Equal(t, date(2021, time.January, 4), WeekStart(1, 2021, time.UTC))
	assert.Equal(t, date(2024, time.December, 30), WeekStart(1, 2025, time.UTC))

	for _, w := range []Week{{1, 2021}, {53, 2020}, {10, 2024}} {
		assert.Equal(t, w, ISOWeekOf(w.Start()), w.String())
	}
}

func TestWeekValid(t *testing.T) {
	assert.True(t, Week{Number: 53, Year: 2020}.Valid())
	assert.False(t, Week{Number: 53, Year: 2021}.Valid())
	assert.False(t, Week{Number: 0, Year: 2021}.Valid())
}

func TestMondayOf(t *testing.T) {
	assert.Equal(t, date(2024, time.March, 11), MondayOf(time.Date(2024, time.March, 13, 15, 4, 0, 0, time.UTC)))
	assert.Equal(t, date(2024, time.March, 11), MondayOf(date(2024, time.March, 11)))
	assert.Equal(t, date(2024, time.March, 11), MondayOf(date(2024, time.March, 17)))
}

func TestAvailableWeeks(t *testing.T) {
	now := time.Date(2024, time.March, 13, 9, 0, 0, 0, time.UTC)
	weeks := AvailableWeeks(now, 0)

	require.Len(t, weeks, DefaultWeekOptions)
	assert.Equal(t, Week{Number: 51, Year: 2023}, weeks[0].Week)
	assert.Equal(t, date(2023, time.December, 18), weeks[0].StartDate)
	assert.Equal(t, "Week 51 (Dec 18 - Dec 22, 2023)", weeks[0].Label)
	assert.Equal(t, ISOWeekOf(now), weeks[WeeksBack].Week)

	for i := 1; i < len(weeks); i++ {
		assert.Equal(t, 7*24*time.Hour, weeks[i].StartDate.Sub(weeks[i-1].StartDate))
	}
}

func TestMonthRange(t *testing.T) {
	r := MonthRange(time.Date(2024, time.February, 10, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, date(2024, time.February, 1), r.Start)
	assert.True(t, r.Contains(time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(date(2024, time.March, 1)))
	assert.False(t, r.Contains(date(2024, time.January, 31)))
}

func TestParseMonth(t *testing.T) {
	r, err := ParseMonth("2021-01", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, date(2021, time.January, 1), r.Start)

	_, err = ParseMonth("January", time.UTC)
	assert.Equal(t, KindValidation, KindOf(err))
}
