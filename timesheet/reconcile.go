package timesheet

import (
	"sort"
	"time"

	"timetracker.com/timetracker/model"
)

// EditBuffer maps project id to the hours being entered for one week.
type EditBuffer map[string]DayHours

func (b EditBuffer) IsZero() bool {
	for _, h := range b {
		if !h.IsZero() {
			return false
		}
	}
	return true
}

func (b EditBuffer) Validate() error {
	for id, h := range b {
		if err := h.Validate(); err != nil {
			if ve, ok := err.(*ValidationError); ok {
				return &ValidationError{Field: id + "." + ve.Field, Message: ve.Message}
			}
			return err
		}
	}
	return nil
}

// BuildSubmission turns a buffer into the pending rows that replace the week.
// An empty or all-zero buffer fails with ErrNothingToSubmit. Rows come out in
// project id order.
func BuildSubmission(userID string, week Week, buffer EditBuffer, now time.Time) ([]model.Timesheet, error) {
	if err := buffer.Validate(); err != nil {
		return nil, err
	}
	if buffer.IsZero() {
		return nil, ErrNothingToSubmit
	}

	ids := make([]string, 0, len(buffer))
	for id, h := range buffer {
		if !h.IsZero() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	rows := make([]model.Timesheet, 0, len(ids))
	for _, id := range ids {
		h := buffer[id]
		rows = append(rows, model.Timesheet{
			UserID:         userID,
			ProjectID:      id,
			WeekNumber:     week.Number,
			Year:           week.Year,
			MondayHours:    h.Monday,
			TuesdayHours:   h.Tuesday,
			WednesdayHours: h.Wednesday,
			ThursdayHours:  h.Thursday,
			FridayHours:    h.Friday,
			TotalHours:     h.Total(),
			Status:         model.StatusPending,
			SubmittedAt:    now,
		})
	}
	return rows, nil
}

// CheckEditable refuses approved timesheets.
func CheckEditable(t model.Timesheet) error {
	if t.Status == model.StatusApproved {
		return ErrApprovedImmutable
	}
	return nil
}

// LoadForEdit maps a week's non-approved rows back into an edit buffer.
// Approved rows are skipped; they stay as they are on resubmission.
func LoadForEdit(timesheets []model.Timesheet) EditBuffer {
	buf := make(EditBuffer, len(timesheets))
	for _, t := range timesheets {
		if CheckEditable(t) != nil {
			continue
		}
		buf[t.ProjectID] = HoursOf(t)
	}
	return buf
}

// CheckResubmission refuses a submission that would overwrite an approved row
// of the same week.
func CheckResubmission(rows []model.Timesheet, existing []model.Timesheet) error {
	approved := make(map[string]bool)
	for _, t := range existing {
		if t.Status == model.StatusApproved {
			approved[t.ProjectID] = true
		}
	}
	for _, r := range rows {
		if approved[r.ProjectID] {
			return ErrApprovedImmutable
		}
	}
	return nil
}
