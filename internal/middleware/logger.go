package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Path params worth carrying onto the request log line
var loggedParams = map[string]string{
	"id":         "workflow_id",
	"logId":      "log_id",
	"templateId": "template_id",
}

// quietRoutes are polled or long-lived and never logged
var quietRoutes = map[string]bool{
	"/api/v1/health":               true,
	"/api/v1/workflow-logs/stream": true,
}

// Logger logs failed requests together with the matched route and the
// entity ids taken from its path
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if quietRoutes[route] {
			return
		}

		statusCode := c.Writer.Status()
		if statusCode < 400 {
			return
		}

		fields := logrus.Fields{
			"status":    statusCode,
			"latency":   time.Since(start),
			"client_ip": c.ClientIP(),
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
		}
		if route != "" {
			fields["route"] = route
		}
		for _, param := range c.Params {
			key, ok := loggedParams[param.Key]
			if !ok {
				continue
			}
			if param.Key == "id" && strings.HasPrefix(route, "/api/v1/bookings/") {
				key = "booking_id"
			}
			fields[key] = param.Value
		}
		if bookingID := c.Query("booking_id"); bookingID != "" {
			fields["booking_id"] = bookingID
		}
		if operator := c.GetString("operator_username"); operator != "" {
			fields["operator"] = operator
		} else if authType := c.GetString("auth_type"); authType != "" {
			fields["auth"] = authType
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}

		entry := logrus.WithFields(fields)
		if statusCode >= 500 {
			entry.Error("Server error")
		} else {
			entry.Warn("Client error")
		}
	}
}
