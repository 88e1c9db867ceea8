package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

var (
	attrRequestID  = attribute.Key("request_id")
	attrUserID     = attribute.Key("user_id")
	attrHTTPStatus = attribute.Key("http.status_code")
)

// Tracing returns the handlers that open a server span per request
// ("METHOD /route/:pattern") and annotate it. Probes are not traced. It
// returns nothing when tracing is off, so callers can spread it into Use.
func Tracing(cfg TracingConfig) []gin.HandlerFunc {
	if !cfg.Enabled {
		return nil
	}
	return []gin.HandlerFunc{
		otelgin.Middleware(cfg.ServiceName, otelgin.WithFilter(func(r *http.Request) bool {
			return !isProbe(r.URL.Path)
		})),
		annotateServerSpan,
	}
}

func isProbe(path string) bool {
	return path == "/health" || path == "/ready"
}

// annotateServerSpan adds the request id up front, then the caller and the
// response status once the chain has run. Only 5xx marks the span failed.
func annotateServerSpan(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		c.Next()
		return
	}
	if id := c.GetString(RequestIDKey); id != "" {
		span.SetAttributes(attrRequestID.String(id))
	}

	c.Next()

	if userID := GetJWTUserID(c); userID != "" {
		span.SetAttributes(attrUserID.String(userID))
	}
	status := c.Writer.Status()
	if status >= http.StatusBadRequest {
		span.SetAttributes(attrHTTPStatus.Int(status))
	}
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
