package alerting

import (
	"log"
	"time"

	"fiberwatch-backend/internal/classifier"
	"fiberwatch-backend/internal/metrics"
)

// Gate decides whether a classified measurement warrants an operator alert.
type Gate struct {
	cooldown *Cooldown
	window   time.Duration
}

// NewGate creates a Gate with the given cooldown window.
func NewGate(window time.Duration) *Gate {
	return &Gate{cooldown: NewCooldown(), window: window}
}

// ShouldNotify reports whether an alert should be dispatched for the device.
// A "No Fault" classification never alerts; confidence strictly below the
// device threshold never alerts. If both checks pass, the per-device cooldown
// is checked and marked in one step, so a true return means this caller owns
// the dispatch attempt for the current window.
func (g *Gate) ShouldNotify(deviceID string, category classifier.Category, confidence, threshold float64) bool {
	if category == classifier.NoFault {
		metrics.GateDecisions.WithLabelValues(metrics.OutcomeNoFault).Inc()
		return false
	}
	if confidence < threshold {
		log.Printf("notification for device %s skipped (below threshold: %.2f < %.2f)", deviceID, confidence, threshold)
		metrics.GateDecisions.WithLabelValues(metrics.OutcomeBelowThresh).Inc()
		return false
	}
	if !g.cooldown.Allow(deviceID, g.window) {
		log.Printf("notification for device %s skipped (cooldown period)", deviceID)
		metrics.GateDecisions.WithLabelValues(metrics.OutcomeCooldown).Inc()
		return false
	}
	metrics.GateDecisions.WithLabelValues(metrics.OutcomeDispatch).Inc()
	return true
}

// Reset clears all per-device cooldown state.
func (g *Gate) Reset() {
	g.cooldown.Reset()
}
