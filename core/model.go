package core

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"
	"timetracker.com/timetracker/model"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Client{},
		&model.Project{},
		&model.ProjectUser{},
		&model.Timesheet{},
		&model.TimesheetEvent{},
	}
}

// Migrate creates or updates the schema.
func (dm *DatabaseManager) Migrate(ctx context.Context) error {
	db := dm.GetDB(ctx)
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}

// TableCheck is the outcome of probing one model's table.
type TableCheck struct {
	Table string
	Rows  int64
	Err   error
}

// Check pings the pool and counts the rows of every table concurrently.
// Missing tables are reported per table rather than failing the whole check.
func (dm *DatabaseManager) Check(ctx context.Context) ([]TableCheck, error) {
	if err := dm.SqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	models := Models()
	results := make([]TableCheck, len(models))
	var wg sync.WaitGroup
	for i, m := range models {
		i, m := i, m
		wg.Add(1)
		go func() {
			defer wg.Done()
			db := dm.GetDB(ctx)
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(m); err != nil {
				results[i] = TableCheck{Table: fmt.Sprintf("%T", m), Err: err}
				return
			}
			res := TableCheck{Table: stmt.Schema.Table}
			if !db.Migrator().HasTable(m) {
				res.Err = fmt.Errorf("table %s is missing", res.Table)
			} else {
				res.Err = db.Model(m).Count(&res.Rows).Error
			}
			results[i] = res
		}()
	}
	wg.Wait()
	return results, nil
}
