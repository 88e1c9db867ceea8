package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelMethod = "method"
	ProfilingLabelRoute  = "route"
	ProfilingLabelArea   = "area"
)

// Profiling tags CPU and allocation samples taken while a request runs with
// its method, route pattern and API area so flame graphs can be split per
// endpoint. Probes and docs are skipped.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" || route == "/ready" || strings.HasPrefix(route, "/swagger") {
			c.Next()
			return
		}

		labels := pyroscope.Labels(
			ProfilingLabelMethod, c.Request.Method,
			ProfilingLabelRoute, route,
			ProfilingLabelArea, routeArea(route),
		)
		pyroscope.TagWrapper(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// routeArea returns the API area of a route pattern:
// "/api/admin/payments/:id" -> "admin", "/api/orders/:id/payments" -> "orders"
func routeArea(route string) string {
	rest, ok := strings.CutPrefix(route, "/api/")
	if !ok {
		return "other"
	}
	area, _, _ := strings.Cut(rest, "/")
	if area == "" {
		return "other"
	}
	return area
}
