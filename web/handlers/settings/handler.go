package settings

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"timetracker.com/timetracker/service"
	web "timetracker.com/timetracker/web/common"
	"timetracker.com/timetracker/web/middlewares"
)

type Endpoint struct {
	svc *service.SettingsService
}

func Register(r *gin.RouterGroup, svc *service.SettingsService) {
	endpoint := &Endpoint{svc: svc}
	r.PUT("/settings/profile", endpoint.UpdateProfile)
	r.PUT("/settings/password", endpoint.ChangePassword)
}

func (ep *Endpoint) UpdateProfile(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body service.ProfileInput
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}

	u, err := ep.svc.UpdateProfile(c.Request.Context(), sess, body)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(u))
}

func (ep *Endpoint) ChangePassword(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	var body service.PasswordInput
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}

	if err := ep.svc.ChangePassword(c.Request.Context(), sess, body); err != nil {
		web.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{}))
}
