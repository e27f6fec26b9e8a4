package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	RequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	// TransitionCounter counts approval workflow transitions by action.
	TransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_timesheet_transitions_total",
			Help: "Timesheet workflow transitions",
		},
		[]string{"action"},
	)

	// SubmissionCounter counts weekly submissions by result.
	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_submissions_total",
			Help: "Weekly hour submissions",
		},
		[]string{"result"},
	)

	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_logins_total",
			Help: "Login attempts",
		},
		[]string{"result"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDurationHistogram,
			TransitionCounter,
			SubmissionCounter,
			LoginCounter,
		)
	})
}

type HTTPMetrics struct {
	ServiceName string
}

func NewHTTPMetrics(serviceName string) *HTTPMetrics {
	Register()
	return &HTTPMetrics{ServiceName: serviceName}
}

func (m *HTTPMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method

		RequestCounter.WithLabelValues(m.ServiceName, method, path, status).Inc()
		RequestDurationHistogram.WithLabelValues(m.ServiceName, method, path, status).Observe(time.Since(start).Seconds())
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
