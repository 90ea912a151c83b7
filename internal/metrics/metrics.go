package metrics

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by method, route template, and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "swiftpass_http_requests_total",
		Help: "HTTP requests processed, labeled by method, route, and status.",
	}, []string{"method", "route", "status"})

	// AttendanceRecorded counts opened attendance records.
	AttendanceRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "swiftpass_attendance_records_total",
		Help: "Attendance records opened via time-in or QR scan.",
	})
)

// GinMiddleware records per-request counters. Uses the route template, not
// the raw path, to keep label cardinality bounded.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
