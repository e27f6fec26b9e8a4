package timesheet

import (
	"fmt"
	"time"
)

// DefaultWeekOptions is the size of the submission form's week selector.
const (
	WeeksBack          = 12
	DefaultWeekOptions = 17
)

// Week identifies an ISO week: Monday-start week number within the ISO week-numbering year.
type Week struct {
	Number int `json:"weekNumber"`
	Year   int `json:"year"`
}

func (w Week) String() string {
	return fmt.Sprintf("%d-W%02d", w.Year, w.Number)
}

// Start is the Monday of the week at midnight UTC.
func (w Week) Start() time.Time {
	return WeekStart(w.Number, w.Year, time.UTC)
}

func (w Week) Valid() bool {
	if w.Number < 1 || w.Year < 1 {
		return false
	}
	return ISOWeekOf(w.Start()) == w
}

func ISOWeekOf(t time.Time) Week {
	y, n := t.ISOWeek()
	return Week{Number: n, Year: y}
}

// MondayOf truncates t to the Monday on or before it.
func MondayOf(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// WeekStart returns the Monday of ISO week number `week` in ISO year `year`.
func WeekStart(week, year int, loc *time.Location) time.Time {
	// 4 January always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	return MondayOf(jan4).AddDate(0, 0, (week-1)*7)
}

type WeekOption struct {
	Week
	StartDate time.Time `json:"startDate"`
	Label     string    `json:"label"`
}

// AvailableWeeks lists the weeks a user may submit for: WeeksBack weeks before
// the current one, then forward until n options exist.
func AvailableWeeks(now time.Time, n int) []WeekOption {
	if n <= 0 {
		n = DefaultWeekOptions
	}
	first := MondayOf(now).AddDate(0, 0, -7*WeeksBack)
	out := make([]WeekOption, 0, n)
	for i := 0; i < n; i++ {
		start := first.AddDate(0, 0, 7*i)
		w := ISOWeekOf(start)
		out = append(out, WeekOption{
			Week:      w,
			StartDate: start,
			Label:     fmt.Sprintf("Week %d (%s - %s)", w.Number, start.Format("Jan 2"), start.AddDate(0, 0, 4).Format("Jan 2, 2006")),
		})
	}
	return out
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// MonthRange spans the calendar month containing t, in t's location.
func MonthRange(t time.Time) DateRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return DateRange{Start: start, End: end}
}

// ParseMonth reads a "2006-01" month string.
func ParseMonth(s string, loc *time.Location) (DateRange, error) {
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return DateRange{}, &ValidationError{Field: "month", Message: "month must be formatted yyyy-MM"}
	}
	return MonthRange(t), nil
}
