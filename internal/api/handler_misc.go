package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fiberwatch-backend/internal/notification"
)

// GetHealth is the liveness probe.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type testEmailRequest struct {
	Recipients []string `json:"recipients"`
}

// PostTestEmail pushes a synthetic message through the real mail transport to
// verify the configuration. Unlike alert dispatch this is synchronous and the
// outcome is returned to the caller.
func (h *Handler) PostTestEmail(c *gin.Context) {
	var req testEmailRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
	}

	err := h.pool.SendTest(req.Recipients)
	if errors.Is(err, notification.ErrMailDisabled) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to send test email: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Test email sent successfully"})
}
