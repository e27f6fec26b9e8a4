package store

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
)

type TimesheetFilter struct {
	UserIDs    []string
	ProjectIDs []string
	Status     model.TimesheetStatus
	Week       *timesheet.Week
	// Submitted restricts submitted_at to an inclusive range.
	Submitted *timesheet.DateRange
	Limit     int
}

func (s *Store) ListTimesheets(ctx context.Context, f TimesheetFilter) ([]model.Timesheet, error) {
	q := s.db(ctx).
		Preload("User").
		Preload("Project").
		Preload("Project.Client").
		Preload("Approver").
		Order("submitted_at DESC").
		Order("id")

	if f.UserIDs != nil {
		if len(f.UserIDs) == 0 {
			return []model.Timesheet{}, nil
		}
		q = q.Where("user_id IN ?", f.UserIDs)
	}
	if f.ProjectIDs != nil {
		if len(f.ProjectIDs) == 0 {
			return []model.Timesheet{}, nil
		}
		q = q.Where("project_id IN ?", f.ProjectIDs)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Week != nil {
		q = q.Where("week_number = ? AND year = ?", f.Week.Number, f.Week.Year)
	}
	if f.Submitted != nil {
		q = q.Where("submitted_at >= ? AND submitted_at <= ?", f.Submitted.Start.UTC(), f.Submitted.End.UTC())
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []model.Timesheet
	if err := q.Find(&rows).Error; err != nil {
		return nil, timesheet.Persistence("list timesheets", err)
	}
	return rows, nil
}

func (s *Store) GetTimesheet(ctx context.Context, id string) (*model.Timesheet, error) {
	var t model.Timesheet
	err := s.db(ctx).
		Preload("User").
		Preload("Project").
		Preload("Approver").
		First(&t, "id = ?", id).Error
	if err != nil {
		return nil, wrap("get timesheet", "timesheet", id, err)
	}
	return &t, nil
}

// ReplaceWeek swaps the user's non-approved rows for week with rows inside one
// transaction. Approved rows survive, and a row targeting a project that is
// already approved that week aborts the whole replace. The approved-row
// exception is deliberate; do not turn this into a delete of the whole week.
func (s *Store) ReplaceWeek(ctx context.Context, userID string, week timesheet.Week, rows []model.Timesheet) ([]model.Timesheet, error) {
	err := s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		var existing []model.Timesheet
		err := tx.Where("user_id = ? AND week_number = ? AND year = ?", userID, week.Number, week.Year).
			Find(&existing).Error
		if err != nil {
			return timesheet.Persistence("load week", err)
		}
		if err := timesheet.CheckResubmission(rows, existing); err != nil {
			return err
		}

		err = tx.Where("user_id = ? AND week_number = ? AND year = ? AND status <> ?", userID, week.Number, week.Year, model.StatusApproved).
			Delete(&model.Timesheet{}).Error
		if err != nil {
			return timesheet.Persistence("delete week", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return timesheet.Persistence("insert week", err)
		}

		events := make([]model.TimesheetEvent, 0, len(rows))
		for _, r := range rows {
			events = append(events, model.TimesheetEvent{
				TimesheetID: r.ID,
				ActorID:     userID,
				Action:      model.EventSubmitted,
				Payload:     payload(map[string]interface{}{"week": week.Number, "year": week.Year, "hours": timesheet.HoursOf(r)}),
			})
		}
		return timesheet.Persistence("insert events", tx.Create(&events).Error)
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ApplyTransition writes tr only while the row is still pending. A lost race
// returns ErrNotPending and leaves the row as the winner wrote it.
func (s *Store) ApplyTransition(ctx context.Context, tr timesheet.Transition) error {
	return s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Model(&model.Timesheet{}).
			Where("id = ? AND status = ?", tr.TimesheetID, model.StatusPending).
			UpdateColumns(map[string]interface{}{
				"status":           tr.To,
				"approved_by":      tr.ApprovedBy,
				"approved_at":      tr.ApprovedAt.UTC(),
				"rejection_reason": tr.RejectionReason,
			})
		if res.Error != nil {
			return timesheet.Persistence("update status", res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&model.Timesheet{}).Where("id = ?", tr.TimesheetID).Count(&n).Error; err != nil {
				return timesheet.Persistence("check timesheet", err)
			}
			if n == 0 {
				return &timesheet.NotFoundError{Entity: "timesheet", ID: tr.TimesheetID}
			}
			return timesheet.ErrNotPending
		}

		action := model.EventApproved
		if tr.To == model.StatusRejected {
			action = model.EventRejected
		}
		event := model.TimesheetEvent{
			TimesheetID: tr.TimesheetID,
			ActorID:     tr.ApprovedBy,
			Action:      action,
			Payload:     payload(map[string]interface{}{"from": tr.From, "to": tr.To, "reason": tr.RejectionReason}),
		}
		return timesheet.Persistence("insert event", tx.Create(&event).Error)
	})
}

func (s *Store) ListEvents(ctx context.Context, timesheetID string) ([]model.TimesheetEvent, error) {
	var events []model.TimesheetEvent
	err := s.db(ctx).Where("timesheet_id = ?", timesheetID).Order("created_at").Order("id").Find(&events).Error
	return events, timesheet.Persistence("list events", err)
}

func payload(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(b)
}
