package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/timesheet"
)

// Notifier receives workflow events. Failures are logged and never undo the
// change that produced the event.
type Notifier interface {
	Notify(ctx context.Context, e timesheet.Event) error
}

// Options carries the collaborators shared by every service.
type Options struct {
	Notifiers []Notifier
	// Location is used for month boundaries and export dates.
	Location *time.Location
	Now      func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now().UTC()
	}
	return time.Now().UTC()
}

func (o Options) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.UTC
}

func (o Options) notify(ctx context.Context, e timesheet.Event) {
	for _, n := range o.Notifiers {
		if err := n.Notify(ctx, e); err != nil {
			logger.FromContext(ctx).Warn("notification failed",
				zap.String("action", string(e.Action)),
				zap.String("owner_id", e.Owner.ID),
				zap.Error(err),
			)
		}
	}
}

func requireApprover(sess *session.Session) error {
	if sess == nil || !sess.IsApprover() {
		return timesheet.ErrAccessDenied
	}
	return nil
}

func requireAdmin(sess *session.Session) error {
	if sess == nil || sess.Role() != model.RoleAdmin {
		return timesheet.ErrAccessDenied
	}
	return nil
}

func userIDs(users []model.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
