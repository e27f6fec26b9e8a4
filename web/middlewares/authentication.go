package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/timesheet"
	"timetracker.com/timetracker/web/common"
)

const sessionKey = "session"

// TokenFrom returns the bearer token, falling back to the session cookie.
func TokenFrom(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		cookie, err := c.Cookie(session.CookieName)
		if err != nil {
			return ""
		}
		return cookie
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authentication resolves the request's session or aborts with 401.
func Authentication(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := sessions.Resolve(c.Request.Context(), TokenFrom(c))
		if err != nil {
			common.AbortWithError(c, session.ErrUnauthenticated)
			return
		}

		c.Set(sessionKey, sess)
		ctx := c.Request.Context()
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(
			zap.String("user_id", sess.UserID()),
			zap.String("role", string(sess.Role())),
		))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireApprover lets managers and admins through.
func RequireApprover() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if sess == nil || !sess.IsApprover() {
			common.AbortWithError(c, timesheet.ErrAccessDenied)
			return
		}
		c.Next()
	}
}

// CurrentSession is the session stored by Authentication, nil outside it.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Session)
	return sess
}

// MustSession is CurrentSession for handlers mounted behind Authentication.
func MustSession(c *gin.Context) (*session.Session, bool) {
	sess := CurrentSession(c)
	if sess == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(session.ErrUnauthenticated.Error()))
		return nil, false
	}
	return sess, true
}
