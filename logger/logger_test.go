package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContextFallsBackToProcessLogger(t *testing.T) {
	assert.Same(t, Get(), FromContext(context.Background()))

	l := zap.NewExample()
	assert.Same(t, l, FromContext(WithContext(context.Background(), l)))
}

func TestMiddlewareLogsRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	prev := Get()
	Set(zap.New(core))
	defer Set(prev)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(RequestIDKey, "req-1"); c.Next() }, Middleware())
	r.GET("/things/:id", func(c *gin.Context) {
		FromContext(c.Request.Context()).Info("inside")
		c.Status(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/7", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "inside", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	ctx := entries[1].ContextMap()
	assert.Equal(t, "/things/:id", ctx["path"])
	assert.EqualValues(t, http.StatusTeapot, ctx["status"])
}

func TestInitDevelopment(t *testing.T) {
	prev := Get()
	defer Set(prev)

	l, err := Init(LogConfig{Level: "debug", Environment: "development", ServiceName: "timetracker"})
	require.NoError(t, err)
	assert.Same(t, l, Get())
}
