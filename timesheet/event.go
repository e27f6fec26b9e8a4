package timesheet

import (
	"fmt"

	"timetracker.com/timetracker/model"
)

// Event describes a workflow change for notification channels.
type Event struct {
	Action     model.EventAction
	Owner      model.User
	Actor      model.User
	Week       Week
	Timesheets []model.Timesheet
	Reason     string
}

func (e Event) TotalHours() float64 {
	var total float64
	for _, t := range e.Timesheets {
		total += DailyTotal(t)
	}
	return total
}

func (e Event) Summary() string {
	switch e.Action {
	case model.EventSubmitted:
		return fmt.Sprintf("%s submitted %s hours for week %d, %d", e.Owner.DisplayName(), formatHours(e.TotalHours()), e.Week.Number, e.Week.Year)
	case model.EventApproved:
		return fmt.Sprintf("%s approved %s's timesheet for week %d, %d (%s hours)", e.Actor.DisplayName(), e.Owner.DisplayName(), e.Week.Number, e.Week.Year, formatHours(e.TotalHours()))
	case model.EventRejected:
		return fmt.Sprintf("%s rejected %s's timesheet for week %d, %d: %s", e.Actor.DisplayName(), e.Owner.DisplayName(), e.Week.Number, e.Week.Year, e.Reason)
	}
	return string(e.Action)
}

func formatHours(h float64) string {
	return fmt.Sprintf("%g", h)
}
