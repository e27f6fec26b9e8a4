package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
)

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := s.db(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrap("get user", "user", id, err)
	}
	return &u, nil
}

// FindUserByUsername returns nil, nil when no user has that name.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := s.db(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, timesheet.Persistence("find user", err)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.db(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, timesheet.Persistence("list users", err)
	}
	return users, nil
}

// ListTeam returns the users reporting to managerID.
func (s *Store) ListTeam(ctx context.Context, managerID string) ([]model.User, error) {
	var users []model.User
	if err := s.db(ctx).Where("manager_id = ?", managerID).Order("username").Find(&users).Error; err != nil {
		return nil, timesheet.Persistence("list team", err)
	}
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if err := s.db(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &timesheet.ConflictError{Message: "username already exists"}
		}
		return timesheet.Persistence("create user", err)
	}
	return nil
}

// UpdateUser applies a column patch and returns the stored row.
func (s *Store) UpdateUser(ctx context.Context, id string, patch map[string]interface{}) (*model.User, error) {
	res := s.db(ctx).Model(&model.User{ID: id}).Updates(patch)
	if res.Error != nil {
		return nil, timesheet.Persistence("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetUser(ctx, id); err != nil {
			return nil, err
		}
	}
	return s.GetUser(ctx, id)
}

// DeleteUser removes the user with their assignments. Reports lose their manager.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&model.ProjectUser{}).Error; err != nil {
			return timesheet.Persistence("delete assignments", err)
		}
		if err := tx.Model(&model.User{}).Where("manager_id = ?", id).Update("manager_id", nil).Error; err != nil {
			return timesheet.Persistence("detach reports", err)
		}
		res := tx.Delete(&model.User{}, "id = ?", id)
		if res.Error != nil {
			return timesheet.Persistence("delete user", res.Error)
		}
		if res.RowsAffected == 0 {
			return &timesheet.NotFoundError{Entity: "user", ID: id}
		}
		return nil
	})
}
