package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"timetracker.com/timetracker/core"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/security"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/store"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

type testServer struct {
	router  *gin.Engine
	store   *store.Store
	project model.Project
	week    timesheet.Week
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	dm, err := core.NewInMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { dm.Close() })
	s := store.New(dm)

	hash, err := security.HashPassword("secret")
	require.NoError(t, err)
	manager := model.User{Username: "mlee", PasswordHash: hash, Role: model.RoleManager}
	require.NoError(t, s.CreateUser(ctx, &manager))
	user := model.User{Username: "jdoe", PasswordHash: hash, FullName: utils.Ptr("Jane Doe"), Role: model.RoleUser, ManagerID: &manager.ID}
	require.NoError(t, s.CreateUser(ctx, &user))

	client := model.Client{Name: "Acme", CreatedBy: manager.ID}
	require.NoError(t, s.CreateClient(ctx, &client))
	project := model.Project{Name: "Acme Site", ClientID: client.ID, AllocatedHours: 100, IsActive: true, CreatedBy: manager.ID}
	require.NoError(t, s.CreateProject(ctx, &project))
	require.NoError(t, s.SetProjectUsers(ctx, project.ID, []string{user.ID}))

	opts := service.Options{}
	router := NewRouter(Services{
		Sessions:    session.NewManager(s, []byte("test-secret"), time.Hour),
		Submissions: service.NewSubmissionService(s, opts),
		Approvals:   service.NewApprovalService(s, opts),
		Overview:    service.NewOverviewService(s, opts),
		Directory:   service.NewDirectoryService(s, opts),
		Settings:    service.NewSettingsService(s),
	}, RouterOptions{ServiceName: "test"})

	return &testServer{router: router, store: s, project: project, week: timesheet.ISOWeekOf(time.Now())}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) login(t *testing.T, username string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.NotEmpty(t, res.Data.Token)
	return res.Data.Token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var res map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestPing(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthentication(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "jdoe", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "authentication", decodeError(t, w)["kind"])

	w = ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "jdoe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := ts.login(t, "jdoe")
	w = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"jdoe"`)
	assert.NotContains(t, w.Body.String(), "password")

	w = ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitApproveFlow(t *testing.T) {
	ts := newTestServer(t)
	userToken := ts.login(t, "jdoe")
	managerToken := ts.login(t, "mlee")

	submit := func(hours gin.H) *httptest.ResponseRecorder {
		return ts.do(t, http.MethodPost, "/api/timesheets/submit", userToken, gin.H{
			"week":  ts.week.Number,
			"year":  ts.week.Year,
			"hours": gin.H{ts.project.ID: hours},
		})
	}

	w := submit(gin.H{"monday": 7.25})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation", decodeError(t, w)["kind"])

	w = submit(gin.H{"monday": 8, "tuesday": 7.5})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/approvals/pending", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/approvals/pending", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending struct {
		Data       []model.Timesheet `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending.Data, 1)
	id := pending.Data[0].ID

	w = ts.do(t, http.MethodPost, "/api/approvals/"+id+"/reject", managerToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/approvals/"+id+"/approve", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/api/approvals/"+id+"/approve", managerToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(t, http.MethodGet, "/api/timesheets/"+id+"/edit", userToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/timesheets/"+id+"/events", userToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var history struct {
		Data []model.TimesheetEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Len(t, history.Data, 2)

	w = ts.do(t, http.MethodGet, "/api/approvals/export?status=approved&format=csv", managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "approved-timesheets-")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Week,Year,Project,User"))

	w = ts.do(t, http.MethodGet, "/api/approvals/export?format=pdf", managerToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOverviewMonthParam(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t, "jdoe")

	w := ts.do(t, http.MethodGet, "/api/overview?month=2024-13", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/overview?month=2024-03", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/projects/"+ts.project.ID+"/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
