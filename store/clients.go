package store

import (
	"context"

	"gorm.io/gorm"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/timesheet"
)

func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	var clients []model.Client
	if err := s.db(ctx).Order("name").Find(&clients).Error; err != nil {
		return nil, timesheet.Persistence("list clients", err)
	}
	return clients, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (*model.Client, error) {
	var c model.Client
	if err := s.db(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, wrap("get client", "client", id, err)
	}
	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, c *model.Client) error {
	return timesheet.Persistence("create client", s.db(ctx).Create(c).Error)
}

func (s *Store) UpdateClient(ctx context.Context, id string, patch map[string]interface{}) (*model.Client, error) {
	if _, err := s.GetClient(ctx, id); err != nil {
		return nil, err
	}
	if err := s.db(ctx).Model(&model.Client{ID: id}).Updates(patch).Error; err != nil {
		return nil, timesheet.Persistence("update client", err)
	}
	return s.GetClient(ctx, id)
}

// DeleteClient refuses to remove a client that still owns projects.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Project{}).Where("client_id = ?", id).Count(&n).Error; err != nil {
			return timesheet.Persistence("count projects", err)
		}
		if n > 0 {
			return &timesheet.ConflictError{Message: "client still has projects"}
		}
		res := tx.Delete(&model.Client{}, "id = ?", id)
		if res.Error != nil {
			return timesheet.Persistence("delete client", res.Error)
		}
		if res.RowsAffected == 0 {
			return &timesheet.NotFoundError{Entity: "client", ID: id}
		}
		return nil
	})
}
