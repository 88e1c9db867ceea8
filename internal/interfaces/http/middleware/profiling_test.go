package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type ctxMarker struct{}

func TestProfiling(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		path      string
		wantRoute string
	}{
		{name: "disabled", enabled: false, path: "/api/admin/payments/abc", wantRoute: ""},
		{name: "labels admin route", enabled: true, path: "/api/admin/payments/abc", wantRoute: "/api/admin/payments/:id"},
		{name: "skips probes", enabled: true, path: "/health", wantRoute: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxMarker{}, "kept"))
				c.Next()
			})
			router.Use(Profiling(tt.enabled))

			var route string
			var marker any
			handler := func(c *gin.Context) {
				route, _ = pprof.Label(c.Request.Context(), ProfilingLabelRoute)
				marker = c.Request.Context().Value(ctxMarker{})
				c.Status(http.StatusOK)
			}
			router.GET("/api/admin/payments/:id", handler)
			router.GET("/health", handler)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantRoute, route)
			assert.Equal(t, "kept", marker)
		})
	}
}

func TestRouteArea(t *testing.T) {
	assert.Equal(t, "admin", routeArea("/api/admin/payments/:id"))
	assert.Equal(t, "orders", routeArea("/api/orders/:id/payments"))
	assert.Equal(t, "webhooks", routeArea("/api/webhooks/polar"))
	assert.Equal(t, "other", routeArea("/health"))
	assert.Equal(t, "other", routeArea("/api/"))
}
