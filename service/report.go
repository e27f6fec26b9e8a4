package service

import (
	"context"
	"time"

	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/store"
	"timetracker.com/timetracker/timesheet"
)

type ReportStore interface {
	ListTimesheets(ctx context.Context, f store.TimesheetFilter) ([]model.Timesheet, error)
}

// ReportRequest selects the timesheets of a scheduled or command line export.
// A nil Week exports every week.
type ReportRequest struct {
	Status model.TimesheetStatus
	Week   *timesheet.Week
	Format string
}

// BuildReport renders all matching timesheets regardless of team. It backs
// jobs that run without a signed-in user.
func BuildReport(ctx context.Context, s ReportStore, req ReportRequest, now time.Time, loc *time.Location) (*ExportFile, error) {
	if req.Status == "" {
		req.Status = model.StatusApproved
	}
	if !req.Status.Valid() {
		return nil, &timesheet.ValidationError{Field: "status", Message: "unknown status " + string(req.Status)}
	}
	if loc == nil {
		loc = time.UTC
	}

	rows, err := s.ListTimesheets(ctx, store.TimesheetFilter{Status: req.Status, Week: req.Week})
	if err != nil {
		return nil, err
	}
	return Render(rows, req.Status, req.Format, now, loc)
}
