package overview

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/timesheet"
	web "timetracker.com/timetracker/web/common"
	"timetracker.com/timetracker/web/middlewares"
)

type Endpoint struct {
	svc *service.OverviewService
	loc *time.Location
	now func() time.Time
}

func Register(r *gin.RouterGroup, svc *service.OverviewService, loc *time.Location) {
	endpoint := &Endpoint{svc: svc, loc: loc, now: time.Now}
	r.GET("/overview", endpoint.Month)
	r.GET("/overview/projects/:id", endpoint.Project)
}

// month reads ?month=yyyy-MM, defaulting to the current month.
func (ep *Endpoint) month(c *gin.Context) (timesheet.DateRange, error) {
	if s := c.Query("month"); s != "" {
		return timesheet.ParseMonth(s, ep.loc)
	}
	return timesheet.MonthRange(ep.now().In(ep.loc)), nil
}

func (ep *Endpoint) Month(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	month, err := ep.month(c)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}

	res, err := ep.svc.Month(c.Request.Context(), sess, month)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}

func (ep *Endpoint) Project(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	month, err := ep.month(c)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}

	res, err := ep.svc.ProjectDetail(c.Request.Context(), sess, c.Param("id"), month)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(res))
}
