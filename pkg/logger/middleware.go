package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Middleware returns a Gin middleware function that logs requests
func Middleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
			c.Header("X-Request-ID", requestID)
		}

		userID, _ := c.Get("userId")
		var userIDStr string
		if userID != nil {
			userIDStr = fmt.Sprintf("%v", userID)
		}

		reqLogger := logger.WithRequestID(requestID)
		if userIDStr != "" {
			reqLogger = reqLogger.WithUserID(userIDStr)
		}

		c.Set("logger", reqLogger)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		reqLogger.LogRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency)

		for _, err := range c.Errors {
			reqLogger.LogError(err.Err, "request error",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
		}
	}
}
