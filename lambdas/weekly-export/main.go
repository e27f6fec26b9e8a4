package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
	"timetracker.com/timetracker/app"
	"timetracker.com/timetracker/export"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/timesheet"
)

// ExportEvent is the scheduled payload. Empty fields pick the previous ISO
// week's approved timesheets as CSV.
type ExportEvent struct {
	Status     string   `json:"status"`
	Format     string   `json:"format"`
	Week       int      `json:"week"`
	Year       int      `json:"year"`
	Recipients []string `json:"recipients"`
}

type ExportResult struct {
	Filename string `json:"filename"`
	Size     int    `json:"bytes"`
	app.Delivery
}

// request resolves the event against now in loc.
func request(e ExportEvent, now time.Time, loc *time.Location) (service.ReportRequest, error) {
	req := service.ReportRequest{
		Status: model.TimesheetStatus(e.Status),
		Format: e.Format,
	}
	if req.Format == "" {
		req.Format = export.FormatCSV
	}
	if req.Status == "" {
		req.Status = model.StatusApproved
	}

	week := timesheet.ISOWeekOf(now.In(loc).AddDate(0, 0, -7))
	if e.Week != 0 {
		week = timesheet.Week{Number: e.Week, Year: e.Year}
	}
	if !week.Valid() {
		return req, fmt.Errorf("invalid week %s", week)
	}
	req.Week = &week
	return req, nil
}

func HandleRequest(ctx context.Context, event ExportEvent) (*ExportResult, error) {
	a, err := app.New(ctx)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	payload, _ := json.Marshal(event)
	a.Log.Info("weekly export", zap.ByteString("event", payload))

	now := time.Now()
	req, err := request(event, now, a.Location)
	if err != nil {
		return nil, err
	}

	file, err := service.BuildReport(ctx, a.Store, req, now, a.Location)
	if err != nil {
		a.ReportError(ctx, "weekly export failed: "+err.Error())
		return nil, err
	}
	d, err := a.Deliver(ctx, file, event.Recipients)
	if err != nil {
		a.ReportError(ctx, "weekly export delivery failed: "+err.Error())
		return nil, err
	}

	if a.Slack != nil {
		_ = a.Slack.Info(ctx, fmt.Sprintf("Exported %s timesheets for week %s to %s", req.Status, req.Week, file.Filename))
	}
	return &ExportResult{Filename: file.Filename, Size: len(file.Content), Delivery: *d}, nil
}

func main() {
	lambda.Start(HandleRequest)
}
