package timesheet

import (
	"errors"
	"math"

	"timetracker.com/timetracker/model"
)

const (
	MaxDayHours = 24.0
	HourStep    = 0.5
)

type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
)

var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

// DayHours holds the hours logged against one project for one week.
type DayHours struct {
	Monday    float64 `json:"monday" binding:"halfhour"`
	Tuesday   float64 `json:"tuesday" binding:"halfhour"`
	Wednesday float64 `json:"wednesday" binding:"halfhour"`
	Thursday  float64 `json:"thursday" binding:"halfhour"`
	Friday    float64 `json:"friday" binding:"halfhour"`
}

func (d DayHours) Values() [5]float64 {
	return [5]float64{d.Monday, d.Tuesday, d.Wednesday, d.Thursday, d.Friday}
}

func (d DayHours) Map() map[Day]float64 {
	return map[Day]float64{
		Monday:    d.Monday,
		Tuesday:   d.Tuesday,
		Wednesday: d.Wednesday,
		Thursday:  d.Thursday,
		Friday:    d.Friday,
	}
}

func (d DayHours) Total() float64 {
	return WeeklyProjectTotal(d.Map())
}

func (d DayHours) IsZero() bool {
	for _, v := range d.Values() {
		if v != 0 {
			return false
		}
	}
	return true
}

func (d DayHours) Validate() error {
	for i, v := range d.Values() {
		if err := ValidateHours(v); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return &ValidationError{Field: string(Days[i]), Message: ve.Message}
			}
			return err
		}
	}
	return nil
}

// HoursOf extracts the day fields of a stored row.
func HoursOf(t model.Timesheet) DayHours {
	return DayHours{
		Monday:    t.MondayHours,
		Tuesday:   t.TuesdayHours,
		Wednesday: t.WednesdayHours,
		Thursday:  t.ThursdayHours,
		Friday:    t.FridayHours,
	}
}

// ValidateHours checks a single day value: finite, within [0, 24], in half-hour steps.
func ValidateHours(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ValidationError{Message: "hours must be a number"}
	}
	if v < 0 || v > MaxDayHours {
		return &ValidationError{Message: "hours must be between 0 and 24"}
	}
	if math.Mod(v, HourStep) != 0 {
		return &ValidationError{Message: "hours must be in steps of 0.5"}
	}
	return nil
}

// DailyTotal sums the five day fields. The stored total_hours is never consulted.
func DailyTotal(t model.Timesheet) float64 {
	return t.MondayHours + t.TuesdayHours + t.WednesdayHours + t.ThursdayHours + t.FridayHours
}

// WeeklyProjectTotal sums an in-progress set of day entries; absent days count as 0.
func WeeklyProjectTotal(hours map[Day]float64) float64 {
	var total float64
	for _, d := range Days {
		total += hours[d]
	}
	return total
}
