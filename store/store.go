package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"timetracker.com/timetracker/core"
	"timetracker.com/timetracker/timesheet"
)

// Store is the gorm-backed data access layer for every table.
type Store struct {
	dm *core.DatabaseManager
}

func New(dm *core.DatabaseManager) *Store {
	return &Store{dm: dm}
}

func (s *Store) db(ctx context.Context) *gorm.DB {
	return s.dm.GetDB(ctx)
}

// wrap classifies a gorm error. Missing rows become NotFoundError.
func wrap(op, entity, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &timesheet.NotFoundError{Entity: entity, ID: id}
	}
	return timesheet.Persistence(op, err)
}
