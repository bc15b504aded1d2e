package model

import "time"

// Notification dispatch outcomes.
const (
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

// NotificationRecord is one row of the append-only dispatch audit trail.
// Records are written once per dispatch attempt and never updated.
type NotificationRecord struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceID      string    `gorm:"size:36;not null;index" json:"device_id"`
	MeasurementID int64     `gorm:"not null;index" json:"measurement_id"`
	Timestamp     time.Time `gorm:"not null;index" json:"timestamp"`

	FaultType    string `gorm:"size:32;not null" json:"fault_type"`
	Recipients   string `gorm:"not null" json:"recipients"` // JSON-encoded, in send order
	Status       string `gorm:"size:16;not null" json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	// Associations
	Device      Device      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Measurement Measurement `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
