package service

import (
	"bytes"
	"context"
	"time"

	"go.uber.org/zap"
	"timetracker.com/timetracker/export"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/metrics"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/store"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

type ApprovalStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	ListTeam(ctx context.Context, managerID string) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListTimesheets(ctx context.Context, f store.TimesheetFilter) ([]model.Timesheet, error)
	GetTimesheet(ctx context.Context, id string) (*model.Timesheet, error)
	ApplyTransition(ctx context.Context, tr timesheet.Transition) error
}

type ApprovalService struct {
	store ApprovalStore
	opts  Options
}

func NewApprovalService(s ApprovalStore, opts Options) *ApprovalService {
	return &ApprovalService{store: s, opts: opts}
}

// owners returns the users whose pending timesheets sess may act on.
func (s *ApprovalService) owners(ctx context.Context, sess *session.Session) ([]model.User, error) {
	if sess.Role() == model.RoleManager {
		return s.store.ListTeam(ctx, sess.UserID())
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return utils.Filter(users, func(u model.User) bool { return timesheet.CanAct(sess.User, u) }), nil
}

// Pending is the approver's queue: a manager's team, or for an admin the
// managers and everyone without a manager.
func (s *ApprovalService) Pending(ctx context.Context, sess *session.Session) ([]model.Timesheet, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	owners, err := s.owners(ctx, sess)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListTimesheets(ctx, store.TimesheetFilter{UserIDs: userIDs(owners), Status: model.StatusPending})
	if err != nil {
		return nil, err
	}
	return timesheet.FilterPendingQueue(sess.User, rows, utils.KeyBy(owners, func(u model.User) string { return u.ID })), nil
}

// Approved lists every approved timesheet for an admin and the team's for a manager.
func (s *ApprovalService) Approved(ctx context.Context, sess *session.Session) ([]model.Timesheet, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	f := store.TimesheetFilter{Status: model.StatusApproved}
	if sess.Role() == model.RoleManager {
		team, err := s.store.ListTeam(ctx, sess.UserID())
		if err != nil {
			return nil, err
		}
		f.UserIDs = userIDs(team)
	}
	rows, err := s.store.ListTimesheets(ctx, f)
	if err != nil {
		return nil, err
	}
	return utils.Filter(rows, func(t model.Timesheet) bool {
		return t.User != nil && timesheet.ApprovedVisible(sess.User, *t.User)
	}), nil
}

func (s *ApprovalService) Approve(ctx context.Context, sess *session.Session, id string) (*model.Timesheet, error) {
	return s.transition(ctx, sess, id, func(t model.Timesheet, owner model.User) (timesheet.Transition, error) {
		return timesheet.Approve(t, sess.User, owner, s.opts.now())
	})
}

func (s *ApprovalService) Reject(ctx context.Context, sess *session.Session, id, reason string) (*model.Timesheet, error) {
	return s.transition(ctx, sess, id, func(t model.Timesheet, owner model.User) (timesheet.Transition, error) {
		return timesheet.Reject(t, sess.User, owner, reason, s.opts.now())
	})
}

func (s *ApprovalService) transition(
	ctx context.Context,
	sess *session.Session,
	id string,
	decide func(t model.Timesheet, owner model.User) (timesheet.Transition, error),
) (*model.Timesheet, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}

	t, err := s.store.GetTimesheet(ctx, id)
	if err != nil {
		return nil, err
	}
	owner := t.User
	if owner == nil {
		if owner, err = s.store.GetUser(ctx, t.UserID); err != nil {
			return nil, err
		}
	}

	tr, err := decide(*t, *owner)
	if err != nil {
		return nil, err
	}
	if err := s.store.ApplyTransition(ctx, tr); err != nil {
		return nil, err
	}

	action := model.EventApproved
	if tr.To == model.StatusRejected {
		action = model.EventRejected
	}
	metrics.TransitionCounter.WithLabelValues(string(action)).Inc()
	logger.FromContext(ctx).Info("timesheet "+string(action),
		zap.String("timesheet_id", id),
		zap.String("actor_id", sess.UserID()),
		zap.String("owner_id", owner.ID),
	)

	updated := *t
	tr.Apply(&updated)
	s.opts.notify(ctx, timesheet.Event{
		Action:     action,
		Owner:      *owner,
		Actor:      sess.User,
		Week:       timesheet.Week{Number: t.WeekNumber, Year: t.Year},
		Timesheets: []model.Timesheet{updated},
		Reason:     utils.Deref(tr.RejectionReason),
	})

	return s.store.GetTimesheet(ctx, id)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Export renders the approver's approved or pending list as CSV or XLSX.
func (s *ApprovalService) Export(ctx context.Context, sess *session.Session, status model.TimesheetStatus, format string) (*ExportFile, error) {
	var (
		rows []model.Timesheet
		err  error
	)
	switch status {
	case model.StatusApproved:
		rows, err = s.Approved(ctx, sess)
	case model.StatusPending:
		rows, err = s.Pending(ctx, sess)
	default:
		return nil, &timesheet.ValidationError{Field: "status", Message: "status must be approved or pending"}
	}
	if err != nil {
		return nil, err
	}
	return Render(rows, status, format, s.opts.now(), s.opts.location())
}

// Render writes rows in the requested format with the standard filename.
func Render(rows []model.Timesheet, status model.TimesheetStatus, format string, now time.Time, loc *time.Location) (*ExportFile, error) {
	if format == "" {
		format = export.FormatCSV
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatCSV:
		if err := export.WriteCSV(&buf, rows, loc); err != nil {
			return nil, err
		}
	case export.FormatXLSX:
		if err := export.WriteXLSX(&buf, rows, loc); err != nil {
			return nil, err
		}
	default:
		return nil, &timesheet.ValidationError{Field: "format", Message: "format must be csv or xlsx"}
	}

	return &ExportFile{
		Filename:    export.FilenameExt(status, now.In(loc), format),
		ContentType: export.ContentType(format),
		Content:     buf.Bytes(),
	}, nil
}
