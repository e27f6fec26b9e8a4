package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/security"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/store"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

type DirectoryStore interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	CreateUser(ctx context.Context, u *model.User) error
	UpdateUser(ctx context.Context, id string, patch map[string]interface{}) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
	UserProjectIDs(ctx context.Context, userID string) ([]string, error)
	SetUserProjects(ctx context.Context, userID string, projectIDs []string) error

	ListClients(ctx context.Context) ([]model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	CreateClient(ctx context.Context, c *model.Client) error
	UpdateClient(ctx context.Context, id string, patch map[string]interface{}) (*model.Client, error)
	DeleteClient(ctx context.Context, id string) error

	ListProjects(ctx context.Context, f store.ProjectFilter) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
	CreateProject(ctx context.Context, p *model.Project) error
	UpdateProject(ctx context.Context, id string, patch map[string]interface{}) (*model.Project, error)
	ProjectUserIDs(ctx context.Context, projectID string) ([]string, error)
	SetProjectUsers(ctx context.Context, projectID string, userIDs []string) error
}

// DirectoryService maintains users, clients, projects and assignments.
type DirectoryService struct {
	store DirectoryStore
	opts  Options
}

func NewDirectoryService(s DirectoryStore, opts Options) *DirectoryService {
	return &DirectoryService{store: s, opts: opts}
}

type UserInput struct {
	Username  string     `json:"username" binding:"required"`
	Password  string     `json:"password"`
	FullName  *string    `json:"fullName"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Role      model.Role `json:"role" binding:"required"`
	ManagerID *string    `json:"managerId"`
}

func (s *DirectoryService) ListUsers(ctx context.Context, sess *session.Session) ([]model.User, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

func (s *DirectoryService) CreateUser(ctx context.Context, sess *session.Session, in UserInput) (*model.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Password) == "" {
		return nil, &timesheet.ValidationError{Field: "password", Message: "password is required"}
	}
	managerID, err := s.checkUser(ctx, in)
	if err != nil {
		return nil, err
	}
	hash, err := security.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Username:     strings.TrimSpace(in.Username),
		PasswordHash: hash,
		FullName:     utils.NilIfEmpty(utils.Deref(in.FullName)),
		Email:        utils.NilIfEmpty(utils.Deref(in.Email)),
		Role:         in.Role,
		ManagerID:    managerID,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("user created", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// UpdateUser rewrites the profile and role. An empty password keeps the current one.
func (s *DirectoryService) UpdateUser(ctx context.Context, sess *session.Session, id string, in UserInput) (*model.User, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	if in.ManagerID != nil && *in.ManagerID == id {
		return nil, &timesheet.ValidationError{Field: "managerId", Message: "a user cannot manage themselves"}
	}
	managerID, err := s.checkUser(ctx, in)
	if err != nil {
		return nil, err
	}

	patch := map[string]interface{}{
		"username":   strings.TrimSpace(in.Username),
		"full_name":  utils.NilIfEmpty(utils.Deref(in.FullName)),
		"email":      utils.NilIfEmpty(utils.Deref(in.Email)),
		"role":       in.Role,
		"manager_id": managerID,
	}
	if in.Password != "" {
		hash, err := security.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		patch["password_hash"] = hash
	}
	return s.store.UpdateUser(ctx, id, patch)
}

// checkUser validates the role and returns the manager id to store. Only the
// user role reports to a manager, and that manager must hold the manager role.
func (s *DirectoryService) checkUser(ctx context.Context, in UserInput) (*string, error) {
	if strings.TrimSpace(in.Username) == "" {
		return nil, &timesheet.ValidationError{Field: "username", Message: "username is required"}
	}
	if !in.Role.Valid() {
		return nil, &timesheet.ValidationError{Field: "role", Message: "role must be user, manager or admin"}
	}
	if in.Role != model.RoleUser || utils.Deref(in.ManagerID) == "" {
		return nil, nil
	}

	m, err := s.store.GetUser(ctx, *in.ManagerID)
	if err != nil {
		if timesheet.KindOf(err) == timesheet.KindNotFound {
			return nil, &timesheet.ValidationError{Field: "managerId", Message: "manager does not exist"}
		}
		return nil, err
	}
	if m.Role != model.RoleManager {
		return nil, &timesheet.ValidationError{Field: "managerId", Message: "selected user is not a manager"}
	}
	return &m.ID, nil
}

func (s *DirectoryService) DeleteUser(ctx context.Context, sess *session.Session, id string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if id == sess.UserID() {
		return &timesheet.ConflictError{Message: "you cannot delete your own account"}
	}
	if err := s.store.DeleteUser(ctx, id); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("user deleted", zap.String("user_id", id))
	return nil
}

func (s *DirectoryService) UserProjects(ctx context.Context, sess *session.Session, userID string) ([]string, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	return s.store.UserProjectIDs(ctx, userID)
}

func (s *DirectoryService) SetUserProjects(ctx context.Context, sess *session.Session, userID string, projectIDs []string) error {
	if err := requireAdmin(sess); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := s.checkProjects(ctx, projectIDs); err != nil {
		return err
	}
	return s.store.SetUserProjects(ctx, userID, projectIDs)
}

func (s *DirectoryService) checkProjects(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	found, err := s.store.ListProjects(ctx, store.ProjectFilter{IDs: utils.Unique(ids)})
	if err != nil {
		return err
	}
	known := utils.KeyBy(found, func(p model.Project) string { return p.ID })
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return &timesheet.ValidationError{Field: "projectIds", Message: "unknown project " + id}
		}
	}
	return nil
}

type ClientInput struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

func (in ClientInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &timesheet.ValidationError{Field: "name", Message: "name is required"}
	}
	return nil
}

func (s *DirectoryService) ListClients(ctx context.Context, sess *session.Session) ([]model.Client, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	return s.store.ListClients(ctx)
}

func (s *DirectoryService) CreateClient(ctx context.Context, sess *session.Session, in ClientInput) (*model.Client, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := &model.Client{
		Name:        strings.TrimSpace(in.Name),
		Description: utils.NilIfEmpty(utils.Deref(in.Description)),
		CreatedBy:   sess.UserID(),
	}
	if err := s.store.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DirectoryService) UpdateClient(ctx context.Context, sess *session.Session, id string, in ClientInput) (*model.Client, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateClient(ctx, id, map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"description": utils.NilIfEmpty(utils.Deref(in.Description)),
	})
}

func (s *DirectoryService) DeleteClient(ctx context.Context, sess *session.Session, id string) error {
	if err := requireApprover(sess); err != nil {
		return err
	}
	return s.store.DeleteClient(ctx, id)
}

type ProjectInput struct {
	Name           string  `json:"name" binding:"required"`
	Description    *string `json:"description"`
	ClientID       string  `json:"clientId" binding:"required"`
	AllocatedHours float64 `json:"allocatedHours" binding:"gte=0"`
}

func (in ProjectInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return &timesheet.ValidationError{Field: "name", Message: "name is required"}
	}
	if in.AllocatedHours < 0 {
		return &timesheet.ValidationError{Field: "allocatedHours", Message: "allocated hours cannot be negative"}
	}
	return nil
}

// ListProjects returns every project to approvers and the assigned ones to users.
func (s *DirectoryService) ListProjects(ctx context.Context, sess *session.Session) ([]model.Project, error) {
	f := store.ProjectFilter{}
	if !sess.IsApprover() {
		f.UserID = sess.UserID()
	}
	return s.store.ListProjects(ctx, f)
}

func (s *DirectoryService) CreateProject(ctx context.Context, sess *session.Session, in ProjectInput) (*model.Project, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, in); err != nil {
		return nil, err
	}
	p := &model.Project{
		Name:           strings.TrimSpace(in.Name),
		Description:    utils.NilIfEmpty(utils.Deref(in.Description)),
		ClientID:       in.ClientID,
		AllocatedHours: in.AllocatedHours,
		IsActive:       true,
		CreatedBy:      sess.UserID(),
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetProject(ctx, p.ID)
}

func (s *DirectoryService) UpdateProject(ctx context.Context, sess *session.Session, id string, in ProjectInput) (*model.Project, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	if err := s.checkProject(ctx, in); err != nil {
		return nil, err
	}
	return s.store.UpdateProject(ctx, id, map[string]interface{}{
		"name":            strings.TrimSpace(in.Name),
		"description":     utils.NilIfEmpty(utils.Deref(in.Description)),
		"client_id":       in.ClientID,
		"allocated_hours": in.AllocatedHours,
	})
}

func (s *DirectoryService) checkProject(ctx context.Context, in ProjectInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	if _, err := s.store.GetClient(ctx, in.ClientID); err != nil {
		if timesheet.KindOf(err) == timesheet.KindNotFound {
			return &timesheet.ValidationError{Field: "clientId", Message: "client does not exist"}
		}
		return err
	}
	return nil
}

// Complete closes the project. Completed projects take no new hours.
func (s *DirectoryService) Complete(ctx context.Context, sess *session.Session, id string) (*model.Project, error) {
	return s.setState(ctx, sess, id, false, utils.Ptr(s.opts.now()))
}

// Archive deactivates the project without marking it completed.
func (s *DirectoryService) Archive(ctx context.Context, sess *session.Session, id string) (*model.Project, error) {
	return s.setState(ctx, sess, id, false, nil)
}

func (s *DirectoryService) Reactivate(ctx context.Context, sess *session.Session, id string) (*model.Project, error) {
	return s.setState(ctx, sess, id, true, nil)
}

func (s *DirectoryService) setState(ctx context.Context, sess *session.Session, id string, active bool, completedAt *time.Time) (*model.Project, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	p, err := s.store.UpdateProject(ctx, id, map[string]interface{}{
		"is_active":    active,
		"completed_at": completedAt,
	})
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("project state changed",
		zap.String("project_id", id),
		zap.String("state", string(p.State())),
		zap.String("actor_id", sess.UserID()),
	)
	return p, nil
}

func (s *DirectoryService) ProjectUsers(ctx context.Context, sess *session.Session, projectID string) ([]string, error) {
	if err := requireApprover(sess); err != nil {
		return nil, err
	}
	return s.store.ProjectUserIDs(ctx, projectID)
}

func (s *DirectoryService) SetProjectUsers(ctx context.Context, sess *session.Session, projectID string, userIDs []string) error {
	if err := requireApprover(sess); err != nil {
		return err
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return err
	}
	known := utils.KeyBy(users, func(u model.User) string { return u.ID })
	for _, id := range userIDs {
		if _, ok := known[id]; !ok {
			return &timesheet.ValidationError{Field: "userIds", Message: "unknown user " + id}
		}
	}
	return s.store.SetProjectUsers(ctx, projectID, userIDs)
}

// ImportResult reports a bulk user import. Failed lines keep going.
type ImportResult struct {
	Created []string          `json:"created"`
	Failed  map[string]string `json:"failed"`
}

// ImportUsers creates users from CSV records with the columns username,
// password, full_name, email, role and manager (a manager's username).
func (s *DirectoryService) ImportUsers(ctx context.Context, sess *session.Session, records []map[string]string) (*ImportResult, error) {
	if err := requireAdmin(sess); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	byName := utils.KeyBy(users, func(u model.User) string { return u.Username })

	res := &ImportResult{Created: []string{}, Failed: map[string]string{}}
	for i, rec := range records {
		in := UserInput{
			Username: rec["username"],
			Password: rec["password"],
			FullName: utils.NilIfEmpty(rec["full_name"]),
			Email:    utils.NilIfEmpty(rec["email"]),
			Role:     model.Role(strings.ToLower(rec["role"])),
		}
		if in.Role == "" {
			in.Role = model.RoleUser
		}
		if m, ok := byName[rec["manager"]]; ok {
			in.ManagerID = &m.ID
		}

		key := in.Username
		if key == "" {
			key = fmt.Sprintf("line %d", i+2)
		}
		u, err := s.CreateUser(ctx, sess, in)
		if err != nil {
			res.Failed[key] = err.Error()
			continue
		}
		byName[u.Username] = *u
		res.Created = append(res.Created, u.Username)
	}
	return res, nil
}
