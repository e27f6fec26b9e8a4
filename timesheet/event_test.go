package timesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/utils"
)

func TestEventSummary(t *testing.T) {
	owner := model.User{Username: "jdoe", FullName: utils.Ptr("Jane Doe")}
	actor := model.User{Username: "mlee"}
	rows := []model.Timesheet{{MondayHours: 8, TuesdayHours: 8}, {FridayHours: 3.5}}
	w := Week{Number: 11, Year: 2024}

	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "Submitted",
			event:    Event{Action: model.EventSubmitted, Owner: owner, Week: w, Timesheets: rows},
			expected: "Jane Doe submitted 19.5 hours for week 11, 2024",
		},
		{
			name:     "Approved",
			event:    Event{Action: model.EventApproved, Owner: owner, Actor: actor, Week: w, Timesheets: rows[:1]},
			expected: "mlee approved Jane Doe's timesheet for week 11, 2024 (16 hours)",
		},
		{
			name:     "Rejected",
			event:    Event{Action: model.EventRejected, Owner: owner, Actor: actor, Week: w, Reason: "Hours exceed allocation"},
			expected: "mlee rejected Jane Doe's timesheet for week 11, 2024: Hours exceed allocation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.Summary())
		})
	}
}
