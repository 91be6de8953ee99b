package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/storefront-backend/pkg/logger"
)

const (
	// RequestIDHeader is echoed on every response.
	RequestIDHeader = "X-Request-ID"

	cartSessionHeader = "X-Cart-Session"
	maxRequestIDLen   = 64
	loggerKey         = "logger"
)

// LoggingMiddleware attaches a request-scoped logger and logs each completed
// request. Requests to quietPaths (health probes, metric scrapes) only log
// at debug level.
func LoggingMiddleware(quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		log := logger.WithContext(map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
		})
		c.Set(loggerKey, log)

		c.Next()

		status := c.Writer.Status()
		fields := map[string]interface{}{
			"route":       c.FullPath(),
			"status_code": status,
			"latency_ms":  time.Since(start).Milliseconds(),
			"body_size":   c.Writer.Size(),
			"ip":          c.ClientIP(),
		}
		if userID, ok := GetUserID(c); ok {
			fields["user_id"] = userID
		}
		if session := c.Writer.Header().Get(cartSessionHeader); session != "" {
			fields["cart_session"] = session
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		switch {
		case status >= 500:
			log.Error("Request failed", nil, fields)
		case status >= 400:
			log.Warn("Request rejected", fields)
		case quiet[c.Request.URL.Path]:
			log.Debug("Request completed", fields)
		default:
			log.Info("Request completed", fields)
		}
	}
}

// GetLoggerFromContext returns the request logger, or the global one outside
// a request.
func GetLoggerFromContext(c *gin.Context) *logger.Logger {
	if v, exists := c.Get(loggerKey); exists {
		if l, ok := v.(*logger.Logger); ok {
			return l
		}
	}
	return logger.Get()
}
