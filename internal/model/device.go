package model

import "time"

// Device represents a registered fiber-link monitoring device.
type Device struct {
	ID             string  `gorm:"primaryKey;size:36" json:"id"`
	Name           string  `gorm:"size:128;not null" json:"name"`
	APIKey         string  `gorm:"uniqueIndex;size:64;not null" json:"-"`
	AlertThreshold float64 `gorm:"not null;default:0.7" json:"alert_threshold"`
	AlertEmail     string  `gorm:"size:256" json:"alert_email"`

	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	LastAlertSent *time.Time `json:"last_alert_sent"`

	// Associations
	Measurements []Measurement `gorm:"foreignKey:DeviceID" json:"-"`
}
