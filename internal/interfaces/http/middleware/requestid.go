// Package middleware provides the gin middleware of the payments API.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

const maxRequestIDLength = 128

// RequestID tags each request with an id, echoed in the response header.
// An inbound X-Request-ID is kept when it is short and single-line, so ids
// from the storefront gateway survive into our logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !usableRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func usableRequestID(id string) bool {
	return id != "" && len(id) <= maxRequestIDLength && !strings.ContainsAny(id, "\r\n")
}
