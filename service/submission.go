package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/metrics"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/store"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

const defaultRecentLimit = 10

type SubmissionStore interface {
	ListProjects(ctx context.Context, f store.ProjectFilter) ([]model.Project, error)
	ListTimesheets(ctx context.Context, f store.TimesheetFilter) ([]model.Timesheet, error)
	GetTimesheet(ctx context.Context, id string) (*model.Timesheet, error)
	ReplaceWeek(ctx context.Context, userID string, week timesheet.Week, rows []model.Timesheet) ([]model.Timesheet, error)
	ListEvents(ctx context.Context, timesheetID string) ([]model.TimesheetEvent, error)
}

type SubmissionService struct {
	store SubmissionStore
	opts  Options
}

func NewSubmissionService(s SubmissionStore, opts Options) *SubmissionService {
	return &SubmissionService{store: s, opts: opts}
}

// WeekView is everything the hour entry form needs for one week.
type WeekView struct {
	Week       timesheet.Week       `json:"week"`
	StartDate  string               `json:"startDate"`
	Projects   []model.Project      `json:"projects"`
	Timesheets []model.Timesheet    `json:"timesheets"`
	Buffer     timesheet.EditBuffer `json:"buffer"`
	// Locked lists projects already approved for the week.
	Locked []string `json:"locked"`
}

func (s *SubmissionService) Week(ctx context.Context, sess *session.Session, week timesheet.Week) (*WeekView, error) {
	if !week.Valid() {
		return nil, &timesheet.ValidationError{Field: "week", Message: "invalid ISO week"}
	}

	projects, err := s.store.ListProjects(ctx, store.ProjectFilter{UserID: sess.UserID(), ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListTimesheets(ctx, store.TimesheetFilter{UserIDs: []string{sess.UserID()}, Week: &week})
	if err != nil {
		return nil, err
	}

	locked := utils.Map(
		utils.Filter(rows, func(t model.Timesheet) bool { return t.Status == model.StatusApproved }),
		func(t model.Timesheet) string { return t.ProjectID },
	)

	return &WeekView{
		Week:       week,
		StartDate:  week.Start().Format(utils.DateLayout),
		Projects:   projects,
		Timesheets: rows,
		Buffer:     timesheet.LoadForEdit(rows),
		Locked:     locked,
	}, nil
}

// Submit replaces the user's week with the buffer. Validation failures never
// reach the store.
func (s *SubmissionService) Submit(ctx context.Context, sess *session.Session, week timesheet.Week, buffer timesheet.EditBuffer) ([]model.Timesheet, error) {
	log := logger.FromContext(ctx)

	rows, err := s.build(ctx, sess, week, buffer)
	if err != nil {
		metrics.SubmissionCounter.WithLabelValues("invalid").Inc()
		return nil, err
	}

	saved, err := s.store.ReplaceWeek(ctx, sess.UserID(), week, rows)
	if err != nil {
		result := "error"
		if timesheet.KindOf(err) == timesheet.KindValidation {
			result = "invalid"
		}
		metrics.SubmissionCounter.WithLabelValues(result).Inc()
		return nil, err
	}

	metrics.SubmissionCounter.WithLabelValues("ok").Inc()
	log.Info("week submitted",
		zap.String("user_id", sess.UserID()),
		zap.Stringer("week", week),
		zap.Int("rows", len(saved)),
	)
	s.opts.notify(ctx, timesheet.Event{
		Action:     model.EventSubmitted,
		Owner:      sess.User,
		Week:       week,
		Timesheets: saved,
	})
	return saved, nil
}

func (s *SubmissionService) build(ctx context.Context, sess *session.Session, week timesheet.Week, buffer timesheet.EditBuffer) ([]model.Timesheet, error) {
	if !week.Valid() {
		return nil, &timesheet.ValidationError{Field: "week", Message: "invalid ISO week"}
	}
	rows, err := timesheet.BuildSubmission(sess.UserID(), week, buffer, s.opts.now())
	if err != nil {
		return nil, err
	}

	assigned, err := s.store.ListProjects(ctx, store.ProjectFilter{UserID: sess.UserID(), ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	allowed := utils.KeyBy(assigned, func(p model.Project) string { return p.ID })
	for _, r := range rows {
		if _, ok := allowed[r.ProjectID]; !ok {
			return nil, &timesheet.ValidationError{Field: r.ProjectID, Message: "project is not assigned to you or is not active"}
		}
	}
	return rows, nil
}

// EditView is a stored week loaded back into the form.
type EditView struct {
	Timesheet model.Timesheet      `json:"timesheet"`
	Week      timesheet.Week       `json:"week"`
	Buffer    timesheet.EditBuffer `json:"buffer"`
}

// Edit loads the week of one of the user's own timesheets for editing.
// Approved timesheets are refused.
func (s *SubmissionService) Edit(ctx context.Context, sess *session.Session, id string) (*EditView, error) {
	t, err := s.store.GetTimesheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != sess.UserID() {
		return nil, timesheet.ErrNotAllowed
	}
	if err := timesheet.CheckEditable(*t); err != nil {
		return nil, err
	}

	week := timesheet.Week{Number: t.WeekNumber, Year: t.Year}
	rows, err := s.store.ListTimesheets(ctx, store.TimesheetFilter{UserIDs: []string{sess.UserID()}, Week: &week})
	if err != nil {
		return nil, err
	}
	return &EditView{Timesheet: *t, Week: week, Buffer: timesheet.LoadForEdit(rows)}, nil
}

// History returns the audit trail of one timesheet, oldest first. The owner
// and the approvers who can see the owner's approved work may read it.
func (s *SubmissionService) History(ctx context.Context, sess *session.Session, id string) ([]model.TimesheetEvent, error) {
	t, err := s.store.GetTimesheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != sess.UserID() && (t.User == nil || !timesheet.ApprovedVisible(sess.User, *t.User)) {
		return nil, timesheet.ErrNotAllowed
	}
	return s.store.ListEvents(ctx, t.ID)
}

func (s *SubmissionService) Recent(ctx context.Context, sess *session.Session, limit int) ([]model.Timesheet, error) {
	return s.store.ListTimesheets(ctx, store.TimesheetFilter{UserIDs: []string{sess.UserID()}, Limit: RecentLimit(limit)})
}

// RecentLimit clamps a requested page size to (0, 100], defaulting when out of range.
func RecentLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return defaultRecentLimit
	}
	return limit
}

func (s *SubmissionService) AvailableWeeks(now time.Time) []timesheet.WeekOption {
	return timesheet.AvailableWeeks(now.In(s.opts.location()), timesheet.DefaultWeekOptions)
}
