package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
)

func TestRequest(t *testing.T) {
	now := time.Date(2024, 3, 18, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		event    ExportEvent
		week     timesheet.Week
		status   model.TimesheetStatus
		format   string
		hasError bool
	}{
		{name: "Defaults to previous week", event: ExportEvent{}, week: timesheet.Week{Number: 11, Year: 2024}, status: model.StatusApproved, format: "csv"},
		{name: "Explicit week", event: ExportEvent{Week: 1, Year: 2025, Status: "pending", Format: "xlsx"}, week: timesheet.Week{Number: 1, Year: 2025}, status: model.StatusPending, format: "xlsx"},
		{name: "Year boundary", event: ExportEvent{Week: 53, Year: 2024}, hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := request(tt.event, now, time.UTC)
			if tt.hasError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, req.Week)
			assert.Equal(t, tt.week, *req.Week)
			assert.Equal(t, tt.status, req.Status)
			assert.Equal(t, tt.format, req.Format)
		})
	}
}
