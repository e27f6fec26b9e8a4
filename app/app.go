package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"timetracker.com/timetracker/config"
	"timetracker.com/timetracker/core"
	"timetracker.com/timetracker/infrastructure/communication"
	"timetracker.com/timetracker/infrastructure/devops"
	"timetracker.com/timetracker/infrastructure/filesystem"
	"timetracker.com/timetracker/infrastructure/mail"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/store"
	"timetracker.com/timetracker/utils"
	"timetracker.com/timetracker/web"
)

// App holds the process-wide collaborators built from configuration.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *core.DatabaseManager
	Store    *store.Store
	Location *time.Location

	Slack   *communication.Slack
	Mailer  *mail.Mailer
	Archive *filesystem.Archive
}

// New loads configuration, starts the logger and opens the database.
// Slack, SES and S3 are only connected when configured.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load(ctx, devops.LoadParameter)
	if err != nil {
		return nil, err
	}
	return FromConfig(ctx, cfg)
}

func FromConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := logger.Init(logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Env,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("configuration loaded", cfg.LogFields()...)

	dm, err := core.New(cfg.DB.Driver, cfg.DB.DSN, cfg.DB.MaxOpenConns, core.ParseLogLevel(cfg.DB.LogLevel))
	if err != nil {
		return nil, err
	}
	if cfg.DB.ConnMaxLifetime > 0 {
		dm.SqlDB.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)
	}

	a := &App{
		Config:   cfg,
		Log:      log,
		DB:       dm,
		Store:    store.New(dm),
		Location: utils.LoadLocation(cfg.Timezone),
	}

	if cfg.Slack.Token != "" {
		a.Slack = communication.NewSlack(cfg.Slack.Token, communication.SlackOption{
			InfoChannelID:  cfg.Slack.InfoChannelID,
			ErrorChannelID: cfg.Slack.ErrorChannelID,
		})
	}
	if cfg.Mail.From != "" {
		if a.Mailer, err = mail.Connect(ctx, cfg.Mail.From); err != nil {
			dm.Close()
			return nil, err
		}
	}
	if cfg.Export.Bucket != "" {
		if a.Archive, err = filesystem.Connect(ctx, cfg.Export.Bucket, cfg.Export.Prefix); err != nil {
			dm.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) Options() service.Options {
	var notifiers []service.Notifier
	if a.Slack != nil {
		notifiers = append(notifiers, a.Slack)
	}
	if a.Mailer != nil {
		notifiers = append(notifiers, a.Mailer)
	}
	return service.Options{Notifiers: notifiers, Location: a.Location}
}

func (a *App) Sessions() (*session.Manager, error) {
	key, err := a.Config.SigningKey()
	if err != nil {
		return nil, err
	}
	return session.NewManager(a.Store, key, a.Config.JWT.TTL), nil
}

// Services builds every HTTP-facing service on the shared store.
func (a *App) Services() (web.Services, error) {
	sessions, err := a.Sessions()
	if err != nil {
		return web.Services{}, err
	}
	opts := a.Options()
	return web.Services{
		Sessions:    sessions,
		Submissions: service.NewSubmissionService(a.Store, opts),
		Approvals:   service.NewApprovalService(a.Store, opts),
		Overview:    service.NewOverviewService(a.Store, opts),
		Directory:   service.NewDirectoryService(a.Store, opts),
		Settings:    service.NewSettingsService(a.Store),
	}, nil
}

// ReportError posts to the Slack error channel when Slack is configured.
func (a *App) ReportError(ctx context.Context, message string) {
	if a.Slack == nil {
		return
	}
	if err := a.Slack.Error(ctx, message); err != nil {
		a.Log.Warn("slack error report failed", zap.Error(err))
	}
}

func (a *App) Close() {
	if err := a.DB.Close(); err != nil {
		a.Log.Warn("close database", zap.Error(err))
	}
	_ = a.Log.Sync()
}
