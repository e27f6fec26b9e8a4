package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"timetracker.com/timetracker/model"
	"timetracker.com/timetracker/session"
	web "timetracker.com/timetracker/web/common"
	"timetracker.com/timetracker/web/middlewares"
)

type Endpoint struct {
	sessions *session.Manager
	secure   bool
}

// Register mounts login on public and the session routes on protected.
func Register(public, protected *gin.RouterGroup, sessions *session.Manager, secureCookie bool) {
	endpoint := &Endpoint{sessions: sessions, secure: secureCookie}
	public.POST("/auth/login", endpoint.Login)
	protected.POST("/auth/logout", endpoint.Logout)
	protected.GET("/auth/me", endpoint.Me)
}

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SessionDTO struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      model.User `json:"user"`
}

func (ep *Endpoint) Login(c *gin.Context) {
	var body LoginDTO
	if err := c.ShouldBindJSON(&body); err != nil {
		web.AbortWithBindingError(c, err)
		return
	}

	sess, token, err := ep.sessions.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		web.AbortWithError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(ep.sessions.TTL().Seconds()), "/", "", ep.secure, true)
	c.JSON(http.StatusOK, web.NewSuccessResponse(SessionDTO{Token: token, ExpiresAt: sess.ExpiresAt, User: sess.User}))
}

func (ep *Endpoint) Logout(c *gin.Context) {
	ep.sessions.Logout(middlewares.TokenFrom(c))
	c.SetCookie(session.CookieName, "", -1, "/", "", ep.secure, true)
	c.JSON(http.StatusOK, web.NewSuccessResponse(gin.H{}))
}

func (ep *Endpoint) Me(c *gin.Context) {
	sess, ok := middlewares.MustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, web.NewSuccessResponse(sess.User))
}
