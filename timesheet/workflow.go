package timesheet

import (
	"strings"
	"time"

	"timetracker.com/timetracker/model"
)

// Transition is the persisted outcome of approving or rejecting a pending timesheet.
type Transition struct {
	TimesheetID     string
	From            model.TimesheetStatus
	To              model.TimesheetStatus
	ApprovedBy      string
	ApprovedAt      time.Time
	RejectionReason *string
}

// CanAct reports whether actor may approve or reject owner's timesheets.
// A manager acts for their own team. An admin acts for managers and for
// anyone without a manager.
func CanAct(actor, owner model.User) bool {
	switch actor.Role {
	case model.RoleManager:
		return owner.ManagerID != nil && *owner.ManagerID == actor.ID
	case model.RoleAdmin:
		return owner.Role == model.RoleManager || !owner.HasManager()
	}
	return false
}

// FilterPendingQueue keeps the pending rows actor may act on. owners is
// keyed by user id; rows whose owner is unknown are dropped.
func FilterPendingQueue(actor model.User, rows []model.Timesheet, owners map[string]model.User) []model.Timesheet {
	out := make([]model.Timesheet, 0, len(rows))
	for _, t := range rows {
		owner, ok := owners[t.UserID]
		if !ok || t.Status != model.StatusPending {
			continue
		}
		if CanAct(actor, owner) {
			out = append(out, t)
		}
	}
	return out
}

// ApprovedVisible reports whether actor may list owner's approved timesheets.
func ApprovedVisible(actor, owner model.User) bool {
	switch actor.Role {
	case model.RoleAdmin:
		return true
	case model.RoleManager:
		return owner.ManagerID != nil && *owner.ManagerID == actor.ID
	}
	return false
}

func Approve(t model.Timesheet, actor, owner model.User, now time.Time) (Transition, error) {
	if err := guard(t, actor, owner); err != nil {
		return Transition{}, err
	}
	return Transition{
		TimesheetID: t.ID,
		From:        t.Status,
		To:          model.StatusApproved,
		ApprovedBy:  actor.ID,
		ApprovedAt:  now,
	}, nil
}

func Reject(t model.Timesheet, actor, owner model.User, reason string, now time.Time) (Transition, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Transition{}, ErrReasonRequired
	}
	if err := guard(t, actor, owner); err != nil {
		return Transition{}, err
	}
	return Transition{
		TimesheetID:     t.ID,
		From:            t.Status,
		To:              model.StatusRejected,
		ApprovedBy:      actor.ID,
		ApprovedAt:      now,
		RejectionReason: &reason,
	}, nil
}

func guard(t model.Timesheet, actor, owner model.User) error {
	if t.UserID != owner.ID {
		return &ValidationError{Message: "owner does not match timesheet"}
	}
	if !CanAct(actor, owner) {
		return ErrNotAllowed
	}
	if t.Status != model.StatusPending {
		return ErrNotPending
	}
	return nil
}

// Apply copies the transition onto t.
func (tr Transition) Apply(t *model.Timesheet) {
	t.Status = tr.To
	by, at := tr.ApprovedBy, tr.ApprovedAt
	t.ApprovedBy = &by
	t.ApprovedAt = &at
	t.RejectionReason = tr.RejectionReason
}
