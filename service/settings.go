package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/security"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

type SettingsStore interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, patch map[string]interface{}) (*model.User, error)
}

// SettingsService lets any signed-in user maintain their own account.
type SettingsService struct {
	store SettingsStore
}

func NewSettingsService(s SettingsStore) *SettingsService {
	return &SettingsService{store: s}
}

type ProfileInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email" binding:"omitempty,email"`
}

func (s *SettingsService) UpdateProfile(ctx context.Context, sess *session.Session, in ProfileInput) (*model.User, error) {
	return s.store.UpdateUser(ctx, sess.UserID(), map[string]interface{}{
		"full_name": utils.NilIfEmpty(strings.TrimSpace(in.FullName)),
		"email":     utils.NilIfEmpty(strings.TrimSpace(in.Email)),
	})
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (s *SettingsService) ChangePassword(ctx context.Context, sess *session.Session, in PasswordInput) error {
	if in.NewPassword == "" {
		return &timesheet.ValidationError{Field: "newPassword", Message: "new password is required"}
	}
	if in.NewPassword != in.ConfirmPassword {
		return &timesheet.ValidationError{Field: "confirmPassword", Message: "New passwords do not match"}
	}

	u, err := s.store.GetUser(ctx, sess.UserID())
	if err != nil {
		return err
	}
	if err := security.CheckPassword(u.PasswordHash, in.CurrentPassword); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return &timesheet.ValidationError{Field: "currentPassword", Message: "current password is incorrect"}
		}
		return err
	}

	hash, err := security.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if _, err := s.store.UpdateUser(ctx, u.ID, map[string]interface{}{"password_hash": hash}); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("password changed", zap.String("user_id", u.ID))
	return nil
}
