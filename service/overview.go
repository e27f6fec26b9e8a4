package service

import (
	"context"

	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/store"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

type OverviewStore interface {
	ListProjects(ctx context.Context, f store.ProjectFilter) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	IsAssigned(ctx context.Context, userID, projectID string) (bool, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	ListTimesheets(ctx context.Context, f store.TimesheetFilter) ([]model.Timesheet, error)
}

type OverviewService struct {
	store OverviewStore
	opts  Options
}

func NewOverviewService(s OverviewStore, opts Options) *OverviewService {
	return &OverviewService{store: s, opts: opts}
}

type ProjectUtilization struct {
	model.Project
	timesheet.UtilizationResult
}

type MonthOverview struct {
	Month    string                 `json:"month"`
	Stats    timesheet.Stats        `json:"stats"`
	Projects []ProjectUtilization   `json:"projects"`
	Weekly   []timesheet.WeekBucket `json:"weekly"`
}

// Month summarises the month's submissions. Users only see projects assigned
// to them and their own timesheets. Projects without hours in the month are
// left out of the utilization list.
func (s *OverviewService) Month(ctx context.Context, sess *session.Session, month timesheet.DateRange) (*MonthOverview, error) {
	pf := store.ProjectFilter{}
	tf := store.TimesheetFilter{Submitted: &month}
	if !sess.IsApprover() {
		pf.UserID = sess.UserID()
		tf.UserIDs = []string{sess.UserID()}
	}

	projects, err := s.store.ListProjects(ctx, pf)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListTimesheets(ctx, tf)
	if err != nil {
		return nil, err
	}
	if !sess.IsApprover() {
		assigned := utils.KeyBy(projects, func(p model.Project) string { return p.ID })
		rows = utils.Filter(rows, func(t model.Timesheet) bool {
			_, ok := assigned[t.ProjectID]
			return ok
		})
	}

	utilization := make([]ProjectUtilization, 0, len(projects))
	for _, p := range projects {
		u := timesheet.Utilization(p, rows, month)
		if u.UtilizationPercent <= 0 {
			continue
		}
		utilization = append(utilization, ProjectUtilization{Project: p, UtilizationResult: u})
	}

	return &MonthOverview{
		Month:    month.Start.In(s.opts.location()).Format("2006-01"),
		Stats:    timesheet.ComputeStats(projects, rows),
		Projects: utilization,
		Weekly:   timesheet.WeeklySeries(rows, projects, month, sess.IsApprover()),
	}, nil
}

type ProjectDetail struct {
	Project        model.Project               `json:"project"`
	Utilization    timesheet.UtilizationResult `json:"utilization"`
	HoursRemaining float64                     `json:"hoursRemaining"`
	Users          []timesheet.UserHours       `json:"users"`
}

// ProjectDetail breaks the project's month down by user. Hours remaining count
// every timesheet ever booked against the project.
func (s *OverviewService) ProjectDetail(ctx context.Context, sess *session.Session, projectID string, month timesheet.DateRange) (*ProjectDetail, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	f := store.TimesheetFilter{ProjectIDs: []string{projectID}}
	if !sess.IsApprover() {
		ok, err := s.store.IsAssigned(ctx, sess.UserID(), projectID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &timesheet.NotFoundError{Entity: "project", ID: projectID}
		}
		f.UserIDs = []string{sess.UserID()}
	}

	all, err := s.store.ListTimesheets(ctx, f)
	if err != nil {
		return nil, err
	}
	inMonth := utils.Filter(all, func(t model.Timesheet) bool { return month.Contains(t.SubmittedAt) })

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	return &ProjectDetail{
		Project:        *p,
		Utilization:    timesheet.Utilization(*p, inMonth, month),
		HoursRemaining: timesheet.HoursRemaining(*p, all),
		Users:          timesheet.ProjectBreakdown(inMonth, users),
	}, nil
}
