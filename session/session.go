package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/metrics"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/security"
)

const CookieName = "tracker_session"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthenticated    = errors.New("not signed in")
)

// Session is the authenticated identity for one request.
type Session struct {
	User      model.User
	TokenID   string
	ExpiresAt time.Time
}

func (s *Session) UserID() string {
	return s.User.ID
}

func (s *Session) Role() model.Role {
	return s.User.Role
}

func (s *Session) IsApprover() bool {
	return s.User.Role.IsApprover()
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// Manager issues and resolves session tokens.
type Manager struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewManager(users UserStore, secret []byte, ttl time.Duration) *Manager {
	return &Manager{
		users:   users,
		secret:  secret,
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Login checks the credentials and returns a fresh session with its token.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, string, error) {
	log := logger.FromContext(ctx)

	u, err := m.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", err
	}
	if u == nil || security.CheckPassword(u.PasswordHash, password) != nil {
		metrics.LoginCounter.WithLabelValues("failure").Inc()
		log.Info("login failed", zap.String("username", username))
		return nil, "", ErrInvalidCredentials
	}

	token, claims, err := security.CreateIdentityToken(security.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     string(u.Role),
	}, m.secret, m.ttl, m.now())
	if err != nil {
		return nil, "", err
	}

	metrics.LoginCounter.WithLabelValues("success").Inc()
	log.Info("login", zap.String("user_id", u.ID))
	return &Session{User: *u, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, token, nil
}

// Resolve returns the session for token, reloading the user so role and
// manager changes apply straight away.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := security.ParseIdentityToken(token, m.secret)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	if m.isRevoked(claims.ID) {
		return nil, ErrUnauthenticated
	}

	u, err := m.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUnauthenticated
	}
	return &Session{User: *u, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// Logout revokes the token until it would have expired anyway.
func (m *Manager) Logout(token string) {
	claims, err := security.ParseIdentityToken(token, m.secret)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[claims.ID] = claims.ExpiresAt.Time
	m.prune()
}

func (m *Manager) isRevoked(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok
}

// prune drops revocations whose tokens have expired. Caller holds mu.
func (m *Manager) prune() {
	now := m.now()
	for id, exp := range m.revoked {
		if exp.Before(now) {
			delete(m.revoked, id)
		}
	}
}
