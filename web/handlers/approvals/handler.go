package approvals

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"timetracker.com/timetracker/export"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/service"
	web "timetracker.com/timetracker/web/common"
	"timetracker.com/timetracker/web/middlewares"
)

type Endpoint struct {
	svc *service.ApprovalService
}

// Register mounts the approval routes. Callers must already require an approver.
func Register(r *gin.RouterGroup, svc *service.ApprovalService) {
	endpoint := &Endpoint{svc: svc}
	r.GET("/approvals/pending", endpoint.Pending)
	r.GET("/approvals/approved", endpoint.Approved)
	r.POST("/approvals/:id/approve", endpoint.Approve)
	r.POST("/approvals/:id/reject", endpoint.Reject)
	r.GET("/approvals/export", endpoint.Export)
}

type RejectDTO struct {
	Reason string `json:"reason" binding:"required"`
}

type ExportQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=approved pending"`
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
}

func (ep *Endpoint) Pending(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	rows, err := ep.svc.Pending(c.Request.Context(), sess)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewListResponse(rows))
}

func (ep *Endpoint) Approved(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	rows, err := ep.svc.Approved(c.Request.Context(), sess)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewListResponse(rows))
}

func (ep *Endpoint) Approve(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	t, err := ep.svc.Approve(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(t))
}

func (ep *Endpoint) Reject(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body RejectDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}

	t, err := ep.svc.Reject(c.Request.Context(), sess, c.Param("id"), body.Reason)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(t))
}

func (ep *Endpoint) Export(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var query ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}
	if query.Status == "" {
		query.Status = string(model.StatusApproved)
	}
	if query.Format == "" {
		query.Format = export.FormatCSV
	}

	file, err := ep.svc.Export(c.Request.Context(), sess, model.TimesheetStatus(query.Status), query.Format)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
