package alerting

import (
	"sync"
	"time"
)

// Cooldown tracks the last alert attempt per device. Check and mark happen
// under one lock so two concurrent measurements for the same device can never
// both pass the gate within the window.
//
// State is process-local; a restart resets every device to "ready". The
// durable Device.LastAlertSent timestamp is maintained separately by the
// dispatcher and only on confirmed delivery.
type Cooldown struct {
	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time // swapped out in tests
}

// NewCooldown creates an empty cooldown clock.
func NewCooldown() *Cooldown {
	return &Cooldown{last: make(map[string]time.Time), now: time.Now}
}

// Allow reports whether the window has elapsed for the device, and if so
// marks the attempt. A true return consumes the cooldown immediately, before
// the dispatch outcome is known.
func (c *Cooldown) Allow(deviceID string, window time.Duration) bool {
	if window <= 0 {
		return true
	}
	now := c.now().UTC()
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts, ok := c.last[deviceID]; ok {
		if now.Sub(ts) < window {
			return false
		}
	}
	c.last[deviceID] = now
	return true
}

// Reset clears all cooldown state.
func (c *Cooldown) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = make(map[string]time.Time)
}
