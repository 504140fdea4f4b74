package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pi-elearning/chatbot-go/internal/ctxutil"
	"github.com/pi-elearning/chatbot-go/internal/logger"
	"github.com/pi-elearning/chatbot-go/internal/router"
)

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, everything else=Debug. A request ID is taken from
// the X-Request-Id header or generated, and echoed back to the client.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		entry := log.WithRequestID(requestID).
			WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("client_ip", c.ClientIP())

		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Debug("Request handled")
		}
	}
}

// rateLimitMiddleware throttles /predict per user. The user identifier is
// read from the request body without consuming it; requests without one
// are keyed by client IP so anonymous traffic is still bounded.
//
// Over-limit requests are answered in-band: 200 with the usual success
// envelope and a polite reply, never an HTTP error the chat widget would
// surface as a failure.
func (a *Application) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := userIDFromBody(c)
		if key == "" {
			key = c.ClientIP()
		}

		if !a.userLimiter.Allow(key) {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"data":    router.RateLimitedReply(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// userIDFromBody peeks at the JSON body for context.userId and restores
// the body for the handler.
func userIDFromBody(c *gin.Context) string {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var req predictRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return ""
	}
	return req.Context.UserID
}
