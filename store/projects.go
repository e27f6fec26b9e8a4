package store

import (
	"context"

	"gorm.io/gorm"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/utils"
)

type ProjectFilter struct {
	IDs []string
	// UserID restricts to projects assigned to that user.
	UserID     string
	ActiveOnly bool
}

func (s *Store) ListProjects(ctx context.Context, f ProjectFilter) ([]model.Project, error) {
	q := s.db(ctx).Preload("Client").Order("projects.name")
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []model.Project{}, nil
		}
		q = q.Where("projects.id IN ?", f.IDs)
	}
	if f.UserID != "" {
		q = q.Joins("JOIN project_users ON project_users.project_id = projects.id AND project_users.user_id = ?", f.UserID)
	}
	if f.ActiveOnly {
		q = q.Where("projects.is_active = ?", true)
	}

	var projects []model.Project
	if err := q.Find(&projects).Error; err != nil {
		return nil, timesheet.Persistence("list projects", err)
	}
	return projects, nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var p model.Project
	if err := s.db(ctx).Preload("Client").First(&p, "id = ?", id).Error; err != nil {
		return nil, wrap("get project", "project", id, err)
	}
	return &p, nil
}

func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	return timesheet.Persistence("create project", s.db(ctx).Create(p).Error)
}

// UpdateProject applies a column patch. Nil values in the patch write NULL.
func (s *Store) UpdateProject(ctx context.Context, id string, patch map[string]interface{}) (*model.Project, error) {
	if _, err := s.GetProject(ctx, id); err != nil {
		return nil, err
	}
	if err := s.db(ctx).Model(&model.Project{ID: id}).Updates(patch).Error; err != nil {
		return nil, timesheet.Persistence("update project", err)
	}
	return s.GetProject(ctx, id)
}

func (s *Store) ProjectUserIDs(ctx context.Context, projectID string) ([]string, error) {
	var ids []string
	err := s.db(ctx).Model(&model.ProjectUser{}).Where("project_id = ?", projectID).Order("user_id").Pluck("user_id", &ids).Error
	return ids, timesheet.Persistence("list project users", err)
}

func (s *Store) UserProjectIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db(ctx).Model(&model.ProjectUser{}).Where("user_id = ?", userID).Order("project_id").Pluck("project_id", &ids).Error
	return ids, timesheet.Persistence("list user projects", err)
}

func (s *Store) IsAssigned(ctx context.Context, userID, projectID string) (bool, error) {
	var n int64
	err := s.db(ctx).Model(&model.ProjectUser{}).Where("user_id = ? AND project_id = ?", userID, projectID).Count(&n).Error
	return n > 0, timesheet.Persistence("check assignment", err)
}

// SetProjectUsers replaces the assignment list of a project. Timesheets are untouched.
func (s *Store) SetProjectUsers(ctx context.Context, projectID string, userIDs []string) error {
	return s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectUser{}).Error; err != nil {
			return timesheet.Persistence("clear project users", err)
		}
		rows := utils.Map(utils.Unique(userIDs), func(id string) model.ProjectUser {
			return model.ProjectUser{ProjectID: projectID, UserID: id}
		})
		return insertAssignments(tx, rows)
	})
}

// SetUserProjects replaces the assignment list of a user. Timesheets are untouched.
func (s *Store) SetUserProjects(ctx context.Context, userID string, projectIDs []string) error {
	return s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&model.ProjectUser{}).Error; err != nil {
			return timesheet.Persistence("clear user projects", err)
		}
		rows := utils.Map(utils.Unique(projectIDs), func(id string) model.ProjectUser {
			return model.ProjectUser{ProjectID: id, UserID: userID}
		})
		return insertAssignments(tx, rows)
	})
}

func insertAssignments(tx *gorm.DB, rows []model.ProjectUser) error {
	if len(rows) == 0 {
		return nil
	}
	return timesheet.Persistence("insert assignments", tx.Create(&rows).Error)
}
