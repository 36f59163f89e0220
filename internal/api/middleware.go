package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rbkantor/eightsleep-nosub-app/internal/metrics"
)

// RequestIDMiddleware ensures every request has a correlation/request ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set("request_id", reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

// MetricsMiddleware counts responses by status code.
func MetricsMiddleware(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		recorder.RecordHTTPStatus(c.Writer.Status())
	}
}
