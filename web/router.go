package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/metrics"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/web/handlers"
	"timetracker.com/timetracker/web/handlers/approvals"
	"timetracker.com/timetracker/web/handlers/auth"
	"timetracker.com/timetracker/web/handlers/directory"
	"timetracker.com/timetracker/web/handlers/overview"
	"timetracker.com/timetracker/web/handlers/settings"
	"timetracker.com/timetracker/web/handlers/timesheets"
	"timetracker.com/timetracker/web/middlewares"
)

type Services struct {
	Sessions    *session.Manager
	Submissions *service.SubmissionService
	Approvals   *service.ApprovalService
	Overview    *service.OverviewService
	Directory   *service.DirectoryService
	Settings    *service.SettingsService
}

type RouterOptions struct {
	ServiceName  string
	CORSOrigins  []string
	SecureCookie bool
	Location     *time.Location
}

func NewRouter(svc Services, opts RouterOptions) *gin.Engine {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(logger.Middleware())
	r.Use(metrics.NewHTTPMetrics(opts.ServiceName).Middleware())
	if len(opts.CORSOrigins) > 0 {
		r.Use(middlewares.CORS(opts.CORSOrigins))
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	public := r.Group("/api")
	protected := r.Group("/api")
	protected.Use(middlewares.Authentication(svc.Sessions))
	{
		auth.Register(public, protected, svc.Sessions, opts.SecureCookie)
		settings.Register(protected, svc.Settings)
		timesheets.Register(protected, svc.Submissions)
		overview.Register(protected, svc.Overview, opts.Location)
		directory.Register(protected, svc.Directory)
		protected.POST("/users/import", handlers.ImportUsersHandler(svc.Directory))
	}

	approvers := protected.Group("")
	approvers.Use(middlewares.RequireApprover())
	approvals.Register(approvers, svc.Approvals)

	return r
}
