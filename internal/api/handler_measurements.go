package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fiberwatch-backend/internal/ingest"
	"fiberwatch-backend/internal/mw"
)

// measurementRequest is the body of POST /api/measurements. Fields are
// pointers so that a legitimate zero reading still satisfies "required".
type measurementRequest struct {
	SignalPower *float64 `json:"signal_power" binding:"required"`
	Attenuation *float64 `json:"attenuation" binding:"required"`
	Distance    *float64 `json:"distance" binding:"required"`
}

// PostMeasurement ingests one reading for the authenticated device and
// returns the classification synchronously. Any triggered alert is handled in
// the background and never delays or fails this response.
func (h *Handler) PostMeasurement(c *gin.Context) {
	device := mw.AuthedDevice(c)

	var req measurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.pipeline.Submit(c.Request.Context(), device, ingest.Reading{
		SignalPower: *req.SignalPower,
		Attenuation: *req.Attenuation,
		Distance:    *req.Distance,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store measurement"})
		return
	}

	m := res.Measurement
	c.JSON(http.StatusOK, gin.H{
		"id":            m.ID,
		"device_id":     m.DeviceID,
		"timestamp":     m.Timestamp,
		"signal_power":  m.SignalPower,
		"attenuation":   m.Attenuation,
		"distance":      m.Distance,
		"fault_type":    m.FaultType,
		"confidence":    m.Confidence,
		"probabilities": res.Probabilities,
	})
}

// GetMeasurements lists the authenticated device's own measurements, most
// recent first.
func (h *Handler) GetMeasurements(c *gin.Context) {
	device := mw.AuthedDevice(c)

	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)

	measurements, err := h.store.ListMeasurements(c.Request.Context(), device.ID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve measurements"})
		return
	}
	c.JSON(http.StatusOK, measurements)
}

// Predict classifies a reading without persisting anything. Used by the
// dashboard's what-if form.
func (h *Handler) Predict(c *gin.Context) {
	var req measurementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := h.classifier.Classify(*req.SignalPower, *req.Attenuation, *req.Distance)
	c.JSON(http.StatusOK, gin.H{
		"prediction":    res.Category,
		"probabilities": res.Probabilities,
		"confidence":    res.Confidence,
	})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
