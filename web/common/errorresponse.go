package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"timetracker.com/timetracker/logger"
	"timetracker.com/timetracker/session"
	"timetracker.com/timetracker/timesheet"
)

type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Message: message,
	}
}

// StatusFor maps a service error onto an HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, session.ErrInvalidCredentials) || errors.Is(err, session.ErrUnauthenticated) {
		return http.StatusUnauthorized
	}
	switch timesheet.KindOf(err) {
	case timesheet.KindValidation:
		return http.StatusBadRequest
	case timesheet.KindAuthorization:
		return http.StatusForbidden
	case timesheet.KindNotFound:
		return http.StatusNotFound
	case timesheet.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// AbortWithError writes err as an ErrorResponse. Persistence failures are
// logged and hidden from the client.
func AbortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	res := &ErrorResponse{Message: err.Error(), Kind: string(timesheet.KindOf(err))}
	switch status {
	case http.StatusUnauthorized:
		res.Kind = "authentication"
	case http.StatusInternalServerError:
		logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		res.Message = "internal server error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, res)
}

// AbortWithBindingError reports a malformed request body or query.
func AbortWithBindingError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, &ErrorResponse{
		Message: FormatBindingError(err),
		Kind:    string(timesheet.KindValidation),
	})
}
