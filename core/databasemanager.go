package core

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	}
	return LogLevelWarn
}

func (l LogLevel) gorm() logger.LogLevel {
	switch l {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	case LogLevelSilent:
		return logger.Silent
	}
	return logger.Info
}

type DatabaseManager struct {
	DB       *gorm.DB
	SqlDB    *sql.DB
	Driver   string
	LogLevel LogLevel
}

// Dialector picks the gorm dialector for a driver name: mysql, postgres or sqlite.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "mysql":
		return mysql.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "sqlite":
		if !strings.Contains(dsn, "foreign_keys") {
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=foreign_keys(1)"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported driver %q", driver)
}

// New opens the shared pool for the given driver.
func New(driver, dsn string, maxConnection int, level LogLevel) (*DatabaseManager, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level.gorm()),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}

	if maxConnection <= 0 {
		maxConnection = 1
	}
	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	return &DatabaseManager{DB: db, SqlDB: sqlDB, Driver: driver, LogLevel: level}, nil
}

// NewInMemory opens a private in-memory SQLite database and migrates it.
func NewInMemory(ctx context.Context) (*DatabaseManager, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dm, err := New("sqlite", dsn, 1, LogLevelSilent)
	if err != nil {
		return nil, err
	}
	if err := dm.Migrate(ctx); err != nil {
		dm.Close()
		return nil, err
	}
	return dm, nil
}

// GetDB returns a session bound to ctx.
func (dm *DatabaseManager) GetDB(ctx context.Context) *gorm.DB {
	return dm.DB.WithContext(ctx)
}

func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	return fn(dm.GetDB(ctx))
}

// Transaction runs fn in a single database transaction. Any error rolls back.
func (dm *DatabaseManager) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return dm.GetDB(ctx).Transaction(fn)
}

func (dm *DatabaseManager) Close() error {
	return dm.SqlDB.Close()
}
