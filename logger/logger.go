package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LogConfig struct {
	Level       string
	Environment string
	ServiceName string
}

var log = zap.NewNop()

// Init builds the process logger: JSON in production, coloured console otherwise.
func Init(config LogConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	fields := zap.Fields(
		zap.String("service", config.ServiceName),
		zap.String("environment", config.Environment),
	)

	var (
		l   *zap.Logger
		err error
	)
	if config.Environment == "production" {
		prodConfig := zap.NewProductionConfig()
		prodConfig.Level = zap.NewAtomicLevelAt(level)
		prodConfig.EncoderConfig.TimeKey = "timestamp"
		prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = prodConfig.Build(fields)
	} else {
		devConfig := zap.NewDevelopmentConfig()
		devConfig.Level = zap.NewAtomicLevelAt(level)
		devConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = devConfig.Build(fields)
	}
	if err != nil {
		return nil, err
	}

	Set(l)
	return l, nil
}

// Set replaces the process logger.
func Set(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
}

func Get() *zap.Logger {
	return log
}

// Middleware logs one line per request and makes a request-scoped logger
// available through FromContext.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctxLogger := Get().With(zap.String("request_id", c.GetString(RequestIDKey)))
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), ctxLogger))

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			ctxLogger.Error("HTTP Request", fields...)
		case status >= 400:
			ctxLogger.Warn("HTTP Request", fields...)
		default:
			ctxLogger.Info("HTTP Request", fields...)
		}
	}
}
