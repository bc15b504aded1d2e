package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fiberwatch-backend/internal/model"
	"fiberwatch-backend/internal/store"
)

type createDeviceRequest struct {
	Name           string   `json:"name" binding:"required"`
	AlertEmail     string   `json:"alert_email"`
	AlertThreshold *float64 `json:"alert_threshold"`
}

// CreateDevice registers a new monitoring device and returns its generated
// credential. The API key is shown only in this response.
func (h *Handler) CreateDevice(c *gin.Context) {
	var req createDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	threshold := h.cfg.Alerting.DefaultThreshold
	if req.AlertThreshold != nil && *req.AlertThreshold > 0 && *req.AlertThreshold <= 1 {
		threshold = *req.AlertThreshold
	}

	apiKey, err := store.GenerateAPIKey(h.cfg.Server.APISecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate API key"})
		return
	}

	device := &model.Device{
		ID:             uuid.NewString(),
		Name:           req.Name,
		APIKey:         apiKey,
		AlertThreshold: threshold,
		AlertEmail:     req.AlertEmail,
	}
	if err := h.store.CreateDevice(c.Request.Context(), device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create device"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":              device.ID,
		"name":            device.Name,
		"api_key":         apiKey,
		"alert_threshold": device.AlertThreshold,
		"alert_email":     device.AlertEmail,
	})
}

// ListDevices returns all registered devices, credentials omitted.
func (h *Handler) ListDevices(c *gin.Context) {
	devices, err := h.store.ListDevices(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve devices"})
		return
	}
	c.JSON(http.StatusOK, devices)
}

type updateDeviceRequest struct {
	Name           string   `json:"name" binding:"required"`
	AlertEmail     string   `json:"alert_email"`
	AlertThreshold *float64 `json:"alert_threshold"`
}

// UpdateDevice edits a device's name, threshold, and alert recipient.
func (h *Handler) UpdateDevice(c *gin.Context) {
	var req updateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	device, err := h.store.DeviceByID(c.Request.Context(), c.Param("device_id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve device"})
		return
	}

	device.Name = req.Name
	device.AlertEmail = req.AlertEmail
	if req.AlertThreshold != nil && *req.AlertThreshold > 0 && *req.AlertThreshold <= 1 {
		device.AlertThreshold = *req.AlertThreshold
	}

	if err := h.store.UpdateDevice(c.Request.Context(), device); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update device"})
		return
	}
	c.JSON(http.StatusOK, device)
}
