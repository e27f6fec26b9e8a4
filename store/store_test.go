package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"timetracker.com/timetracker/core"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

type fixture struct {
	store   *Store
	manager model.User
	user    model.User
	client  model.Client
	acme    model.Project
	harbour model.Project
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()

	dm, err := core.NewInMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })

	s := New(dm)
	f := fixture{store: s}

	f.manager = model.User{Username: "mlee", PasswordHash: "x", Role: model.RoleManager}
	require.NoError(t, s.CreateUser(ctx, &f.manager))
	f.user = model.User{Username: "jdoe", PasswordHash: "x", FullName: utils.Ptr("Jane Doe"), Role: model.RoleUser, ManagerID: &f.manager.ID}
	require.NoError(t, s.CreateUser(ctx, &f.user))

	f.client = model.Client{Name: "Acme", CreatedBy: f.manager.ID}
	require.NoError(t, s.CreateClient(ctx, &f.client))

	f.acme = model.Project{Name: "Acme Site", ClientID: f.client.ID, AllocatedHours: 100, IsActive: true, CreatedBy: f.manager.ID}
	require.NoError(t, s.CreateProject(ctx, &f.acme))
	f.harbour = model.Project{Name: "Harbour", ClientID: f.client.ID, AllocatedHours: 50, IsActive: true, CreatedBy: f.manager.ID}
	require.NoError(t, s.CreateProject(ctx, &f.harbour))

	return f
}

func (f fixture) submit(t *testing.T, buf timesheet.EditBuffer, week timesheet.Week, now time.Time) []model.Timesheet {
	t.Helper()
	rows, err := timesheet.BuildSubmission(f.user.ID, week, buf, now)
	require.NoError(t, err)
	out, err := f.store.ReplaceWeek(context.Background(), f.user.ID, week, rows)
	require.NoError(t, err)
	return out
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	u, err := f.store.FindUserByUsername(ctx, "jdoe")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, f.user.ID, u.ID)

	missing, err := f.store.FindUserByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = f.store.GetUser(ctx, "nope")
	assert.Equal(t, timesheet.KindNotFound, timesheet.KindOf(err))

	err = f.store.CreateUser(ctx, &model.User{Username: "jdoe", PasswordHash: "x", Role: model.RoleUser})
	assert.Equal(t, timesheet.KindConflict, timesheet.KindOf(err))

	team, err := f.store.ListTeam(ctx, f.manager.ID)
	require.NoError(t, err)
	require.Len(t, team, 1)
	assert.Equal(t, "jdoe", team[0].Username)

	updated, err := f.store.UpdateUser(ctx, f.user.ID, map[string]interface{}{"email": "jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", *updated.Email)
}

func TestDeleteManagerDetachesReports(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	require.NoError(t, f.store.SetUserProjects(ctx, f.manager.ID, []string{f.acme.ID}))

	require.NoError(t, f.store.DeleteUser(ctx, f.manager.ID))

	u, err := f.store.GetUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Nil(t, u.ManagerID)

	ids, err := f.store.ProjectUserIDs(ctx, f.acme.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.Equal(t, timesheet.KindNotFound, timesheet.KindOf(f.store.DeleteUser(ctx, f.manager.ID)))
}

func TestAssignments(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	require.NoError(t, f.store.SetUserProjects(ctx, f.user.ID, []string{f.acme.ID, f.harbour.ID, f.acme.ID}))

	projects, err := f.store.ListProjects(ctx, ProjectFilter{UserID: f.user.ID, ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Site", "Harbour"}, utils.Map(projects, func(p model.Project) string { return p.Name }))
	require.NotNil(t, projects[0].Client)
	assert.Equal(t, "Acme", projects[0].Client.Name)

	require.NoError(t, f.store.SetProjectUsers(ctx, f.harbour.ID, nil))
	ok, err := f.store.IsAssigned(ctx, f.user.ID, f.harbour.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.store.IsAssigned(ctx, f.user.ID, f.acme.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDeleteClientWithProjects(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	err := f.store.DeleteClient(ctx, f.client.ID)
	assert.Equal(t, timesheet.KindConflict, timesheet.KindOf(err))

	empty := model.Client{Name: "Empty", CreatedBy: f.manager.ID}
	require.NoError(t, f.store.CreateClient(ctx, &empty))
	assert.NoError(t, f.store.DeleteClient(ctx, empty.ID))
}

func TestUpdateProjectWritesNull(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	now := time.Now().UTC()

	p, err := f.store.UpdateProject(ctx, f.acme.ID, map[string]interface{}{"is_active": false, "completed_at": now})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectCompleted, p.State())

	p, err = f.store.UpdateProject(ctx, f.acme.ID, map[string]interface{}{"is_active": true, "completed_at": nil})
	require.NoError(t, err)
	assert.Equal(t, model.ProjectActive, p.State())
	assert.Nil(t, p.CompletedAt)
}

func TestReplaceWeekRecomputesTotal(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	week := timesheet.Week{Number: 11, Year: 2024}

	rows, err := timesheet.BuildSubmission(f.user.ID, week, timesheet.EditBuffer{f.acme.ID: {Monday: 8, Tuesday: 4}}, time.Now().UTC())
	require.NoError(t, err)
	rows[0].TotalHours = 999

	_, err = f.store.ReplaceWeek(ctx, f.user.ID, week, rows)
	require.NoError(t, err)

	stored, err := f.store.ListTimesheets(ctx, TimesheetFilter{Week: &week})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 12.0, stored[0].TotalHours)
	assert.Equal(t, "Jane Doe", stored[0].User.DisplayName())
	assert.Equal(t, "Acme Site", stored[0].Project.Name)
}

func TestReplaceWeekKeepsApprovedRows(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	week := timesheet.Week{Number: 11, Year: 2024}

	first := f.submit(t, timesheet.EditBuffer{
		f.acme.ID:    {Monday: 8},
		f.harbour.ID: {Tuesday: 8},
	}, week, time.Now().UTC())

	acmeRow := utils.Find(first, func(r model.Timesheet) bool { return r.ProjectID == f.acme.ID })
	require.NotNil(t, acmeRow)
	tr, err := timesheet.Approve(*acmeRow, f.manager, f.user, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, f.store.ApplyTransition(ctx, tr))

	// Harbour is resubmitted, the approved Acme row stays.
	f.submit(t, timesheet.EditBuffer{f.harbour.ID: {Wednesday: 6}}, week, time.Now().UTC())

	stored, err := f.store.ListTimesheets(ctx, TimesheetFilter{UserIDs: []string{f.user.ID}, Week: &week})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	byProject := utils.KeyBy(stored, func(r model.Timesheet) string { return r.ProjectID })
	assert.Equal(t, model.StatusApproved, byProject[f.acme.ID].Status)
	assert.Equal(t, 6.0, byProject[f.harbour.ID].WednesdayHours)
	assert.Equal(t, model.StatusPending, byProject[f.harbour.ID].Status)

	// A row for the approved project is refused and nothing changes.
	rows, err := timesheet.BuildSubmission(f.user.ID, week, timesheet.EditBuffer{f.acme.ID: {Monday: 1}}, time.Now().UTC())
	require.NoError(t, err)
	_, err = f.store.ReplaceWeek(ctx, f.user.ID, week, rows)
	assert.ErrorIs(t, err, timesheet.ErrApprovedImmutable)

	after, err := f.store.ListTimesheets(ctx, TimesheetFilter{UserIDs: []string{f.user.ID}, Week: &week})
	require.NoError(t, err)
	assert.Len(t, after, 2)
}

func TestApplyTransitionFirstWriteWins(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	week := timesheet.Week{Number: 11, Year: 2024}
	row := f.submit(t, timesheet.EditBuffer{f.acme.ID: {Monday: 8}}, week, time.Now().UTC())[0]

	reject, err := timesheet.Reject(row, f.manager, f.user, "Hours exceed allocation", time.Now().UTC())
	require.NoError(t, err)
	approve, err := timesheet.Approve(row, f.manager, f.user, time.Now().UTC())
	require.NoError(t, err)

	require.NoError(t, f.store.ApplyTransition(ctx, reject))
	assert.ErrorIs(t, f.store.ApplyTransition(ctx, approve), timesheet.ErrNotPending)

	stored, err := f.store.GetTimesheet(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, stored.Status)
	assert.Equal(t, "Hours exceed allocation", *stored.RejectionReason)
	assert.Equal(t, f.manager.ID, *stored.ApprovedBy)
	require.NotNil(t, stored.Approver)
	assert.Equal(t, "mlee", stored.Approver.Username)

	events, err := f.store.ListEvents(ctx, row.ID)
	require.NoError(t, err)
	actions := utils.Map(events, func(e model.TimesheetEvent) model.EventAction { return e.Action })
	assert.ElementsMatch(t, []model.EventAction{model.EventSubmitted, model.EventRejected}, actions)

	missing := approve
	missing.TimesheetID = "missing"
	assert.Equal(t, timesheet.KindNotFound, timesheet.KindOf(f.store.ApplyTransition(ctx, missing)))
}

func TestListTimesheetsFilters(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	march := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	april := time.Date(2024, time.April, 2, 9, 0, 0, 0, time.UTC)
	f.submit(t, timesheet.EditBuffer{f.acme.ID: {Monday: 8}}, timesheet.ISOWeekOf(march), march)
	f.submit(t, timesheet.EditBuffer{f.harbour.ID: {Monday: 4}}, timesheet.ISOWeekOf(april), april)

	r := timesheet.MonthRange(march)
	rows, err := f.store.ListTimesheets(ctx, TimesheetFilter{Submitted: &r})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.acme.ID, rows[0].ProjectID)

	rows, err = f.store.ListTimesheets(ctx, TimesheetFilter{ProjectIDs: []string{f.harbour.ID}, Status: model.StatusPending})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	rows, err = f.store.ListTimesheets(ctx, TimesheetFilter{UserIDs: []string{}})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = f.store.ListTimesheets(ctx, TimesheetFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.harbour.ID, rows[0].ProjectID)
}
