package middleware

import (
	"time"

	"gameflix/apperror"
	"gameflix/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Context keys shared by the auth middleware, the rate limiter and the
// loggers.
const (
	UserIDKey      = "userId"
	UserTypeKey    = "userType"
	RateLimitedKey = "rateLimitedBy"
)

// RequestLogger logs one line per request, at warn for 4xx and error for
// 5xx. Unmatched paths are logged with an empty route.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		statusCode := c.Writer.Status()

		logLevel := logrus.InfoLevel
		if statusCode >= 500 {
			logLevel = logrus.ErrorLevel
		} else if statusCode >= 400 {
			logLevel = logrus.WarnLevel
		}

		fields := logrus.Fields{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"route":         c.FullPath(),
			"status":        statusCode,
			"duration_ms":   time.Since(startTime).Milliseconds(),
			"ip":            c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
			"query":         c.Request.URL.RawQuery,
			"response_size": c.Writer.Size(),
		}

		if userID := c.GetString(UserIDKey); userID != "" {
			fields["user_id"] = userID
			fields["user_type"] = c.GetString(UserTypeKey)
		}
		if key := c.GetString(RateLimitedKey); key != "" {
			fields["rate_limited_by"] = key
		}

		utils.Log.WithFields(fields).Log(logLevel, "HTTP Request")
	}
}

// ErrorLogger logs errors attached with c.Error, tagging API errors with
// their code.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, err := range c.Errors {
			fields := logrus.Fields{
				"error":  err.Error(),
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			}
			if appErr, ok := apperror.As(err.Err); ok {
				fields["code"] = appErr.Code
				fields["status"] = appErr.Status
			}
			utils.Log.WithFields(fields).Error("Request error occurred")
		}
	}
}
