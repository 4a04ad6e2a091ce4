package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/samkorsel/carpool-backend/internal/utils"
)

// RequestLogger logs each request with latency, status and parsed client
// device information.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		device := utils.ParseUserAgent(c.Request.UserAgent())

		entry := logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"latency_ms":  time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
			"device_type": device.DeviceType,
			"os":          device.OS,
			"browser":     device.Browser,
		})

		if userCtx, ok := GetUserContext(c); ok {
			entry = entry.WithField("user_id", userCtx.UserID.String())
		}

		if c.Writer.Status() >= 500 {
			entry.Error("Request completed")
		} else {
			entry.Info("Request completed")
		}
	}
}
