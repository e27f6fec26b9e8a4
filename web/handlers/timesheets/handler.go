package timesheets

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"timetracker.com/timetracker/service"
	"timetracker.com/timetracker/timesheet"
	web "timetracker.com/timetracker/web/common"
	"timetracker.com/timetracker/web/middlewares"
)

type Endpoint struct {
	svc *service.SubmissionService
	now func() time.Time
}

func Register(r *gin.RouterGroup, svc *service.SubmissionService) {
	endpoint := &Endpoint{svc: svc, now: time.Now}
	r.GET("/timesheets/weeks", endpoint.Weeks)
	r.GET("/timesheets/week", endpoint.Week)
	r.POST("/timesheets/submit", endpoint.Submit)
	r.GET("/timesheets/recent", endpoint.Recent)
	r.GET("/timesheets/:id/edit", endpoint.Edit)
	r.GET("/timesheets/:id/events", endpoint.Events)
}

type WeekQuery struct {
	Week int `form:"week"`
	Year int `form:"year"`

	// Date picks the ISO week containing it when week and year are absent.
	Date web.DateOnly `form:"date"`
}

func (q WeekQuery) resolve(now time.Time) timesheet.Week {
	switch {
	case q.Week != 0 || q.Year != 0:
		return timesheet.Week{Number: q.Week, Year: q.Year}
	case !q.Date.IsZero():
		return timesheet.ISOWeekOf(q.Date.Time)
	}
	return timesheet.ISOWeekOf(now)
}

type SubmitDTO struct {
	Week  int                  `json:"week" binding:"required"`
	Year  int                  `json:"year" binding:"required"`
	Hours timesheet.EditBuffer `json:"hours" binding:"dive"`
}

func (ep *Endpoint) Weeks(c *gin.Context) {
	c.JSON(http.StatusOK, web.NewSuccessResponse(ep.svc.AvailableWeeks(ep.now())))
}

func (ep *Endpoint) Week(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var query WeekQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}

	view, err := ep.svc.Week(c.Request.Context(), sess, query.resolve(ep.now()))
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(view))
}

func (ep *Endpoint) Submit(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body SubmitDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}

	week := timesheet.Week{Number: body.Week, Year: body.Year}
	rows, err := ep.svc.Submit(c.Request.Context(), sess, week, body.Hours)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, web.NewSuccessResponse(rows))
}

func (ep *Endpoint) Recent(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	limit := 0
	if val, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = val
	}

	rows, err := ep.svc.Recent(c.Request.Context(), sess, limit)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewListResponse(rows).WithLimit(service.RecentLimit(limit)))
}

func (ep *Endpoint) Edit(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}

	view, err := ep.svc.Edit(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(view))
}

func (ep *Endpoint) Events(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}

	events, err := ep.svc.History(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewListResponse(events))
}
