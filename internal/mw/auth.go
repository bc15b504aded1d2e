package mw

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fiberwatch-backend/internal/model"
	"fiberwatch-backend/internal/store"
)

// APIKeyHeader carries the device's opaque credential token.
const APIKeyHeader = "X-API-Key"

const deviceContextKey = "fiberwatch/authed-device"

// DeviceAuth authenticates the request's API key against the credential store.
// It is a hard gate: no other pipeline step runs for an unauthenticated
// request. On success the resolved device is attached to the context, typed,
// for handlers to read via AuthedDevice.
func DeviceAuth(s store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(APIKeyHeader)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key is missing"})
			return
		}

		device, err := s.DeviceByAPIKey(c.Request.Context(), apiKey)
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify API key"})
			return
		}

		c.Set(deviceContextKey, device)
		c.Next()
	}
}

// AuthedDevice returns the device resolved by DeviceAuth, or nil when the
// route is not behind it.
func AuthedDevice(c *gin.Context) *model.Device {
	v, ok := c.Get(deviceContextKey)
	if !ok {
		return nil
	}
	device, _ := v.(*model.Device)
	return device
}
