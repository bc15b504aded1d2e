package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetRecentData returns the latest measurements across all devices, joined
// with device names, for the dashboard feed.
func (h *Handler) GetRecentData(c *gin.Context) {
	limit := intQuery(c, "limit", 100)

	rows, err := h.store.RecentMeasurements(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recent measurements"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetStats returns aggregate counts for the dashboard.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetNotifications lists the dispatch audit trail, newest first.
func (h *Handler) GetNotifications(c *gin.Context) {
	limit := intQuery(c, "limit", 100)

	rows, err := h.store.ListNotifications(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve notifications"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
