package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/security"
	"timetracker.com/timetracker/timesheet"
)

type memoryUsers map[string]*model.User

func (m memoryUsers) GetUser(ctx context.Context, id string) (*model.User, error) {
	for _, u := range m {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, &timesheet.NotFoundError{Entity: "user", ID: id}
}

func (m memoryUsers) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return m[username], nil
}

func newManager(t *testing.T) (*Manager, memoryUsers) {
	hash, err := security.HashPassword("s3cret")
	require.NoError(t, err)
	users := memoryUsers{
		"jdoe": {ID: "u1", Username: "jdoe", PasswordHash: hash, Role: model.RoleUser},
	}
	return NewManager(users, []byte("test-secret"), time.Hour), users
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	tests := []struct {
		name     string
		username string
		password string
		err      error
	}{
		{name: "Valid", username: "jdoe", password: "s3cret"},
		{name: "Padded username", username: " jdoe ", password: "s3cret"},
		{name: "Wrong password", username: "jdoe", password: "nope", err: ErrInvalidCredentials},
		{name: "Unknown user", username: "ghost", password: "s3cret", err: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, token, err := m.Login(ctx, tt.username, tt.password)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Nil(t, sess)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.Equal(t, "u1", sess.UserID())
		})
	}
}

func TestResolveReloadsUser(t *testing.T) {
	ctx := context.Background()
	m, users := newManager(t)

	_, token, err := m.Login(ctx, "jdoe", "s3cret")
	require.NoError(t, err)

	users["jdoe"].Role = model.RoleManager

	sess, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, sess.Role())
	assert.True(t, sess.IsApprover())
}

func TestResolveRejects(t *testing.T) {
	ctx := context.Background()
	m, users := newManager(t)

	_, err := m.Resolve(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = m.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, token, err := m.Login(ctx, "jdoe", "s3cret")
	require.NoError(t, err)
	delete(users, "jdoe")
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, first, err := m.Login(ctx, "jdoe", "s3cret")
	require.NoError(t, err)
	_, second, err := m.Login(ctx, "jdoe", "s3cret")
	require.NoError(t, err)

	m.Logout(first)

	_, err = m.Resolve(ctx, first)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = m.Resolve(ctx, second)
	assert.NoError(t, err)
}

func TestPruneDropsExpiredRevocations(t *testing.T) {
	m, _ := newManager(t)
	m.revoked["old"] = time.Now().Add(-time.Minute)
	m.revoked["live"] = time.Now().Add(time.Minute)

	m.mu.Lock()
	m.prune()
	m.mu.Unlock()

	assert.NotContains(t, m.revoked, "old")
	assert.Contains(t, m.revoked, "live")
}
