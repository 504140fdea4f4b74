package app

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pi-elearning/chatbot-go/internal/config"
	"github.com/pi-elearning/chatbot-go/internal/ctxutil"
)

// predictRequest is the inbound chat payload. The frontend sends the user
// identifier inside a context object alongside the message.
type predictRequest struct {
	Message string `json:"message"`
	Context struct {
		UserID string `json:"userId"`
	} `json:"context"`
}

// handlePredict routes one chat message and returns the reply wrapped in
// the success envelope the frontend expects.
func (a *Application) handlePredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no message provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.PredictProcessing)
	defer cancel()
	ctx = ctxutil.WithUserID(ctx, req.Context.UserID)

	reply := a.router.HandleMessage(ctx, req.Message, req.Context.UserID, bearerToken(c))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reply,
	})
}

// bearerToken extracts the token from an Authorization header, or returns
// "" when absent. The token is forwarded to the catalog API as-is.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}

// handleHealth reports classifier model state and the known intent count.
func (a *Application) handleHealth(c *gin.Context) {
	status := a.classifier.Status(c.Request.Context())

	modelStatus := "not_loaded"
	if status.Loaded {
		modelStatus = "loaded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_status": modelStatus,
		"num_intents":  status.NumIntents,
	})
}

// livenessCheck reports process liveness only.
func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readinessCheck verifies the snapshot database is usable. The catalog API
// being down does not make the service unready: the fallback chain still
// serves the snapshot or the built-in dataset.
func (a *Application) readinessCheck(c *gin.Context) {
	if err := a.db.Ready(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}

	snapshotCount, err := a.db.CountCourses(c.Request.Context())
	if err != nil {
		snapshotCount = 0
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           "ready",
		"snapshot_courses": snapshotCount,
	})
}
