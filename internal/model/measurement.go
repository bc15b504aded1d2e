package model

import "time"

// Measurement is one ingested reading together with its classification.
// Rows are append-only; only NotificationSent is ever updated afterwards.
type Measurement struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DeviceID  string    `gorm:"size:36;not null;index" json:"device_id"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`

	SignalPower float64 `gorm:"not null" json:"signal_power"`
	Attenuation float64 `gorm:"not null" json:"attenuation"`
	Distance    float64 `gorm:"not null" json:"distance"`

	FaultType        string  `gorm:"size:32;not null" json:"fault_type"`
	Confidence       float64 `gorm:"not null" json:"confidence"`
	NotificationSent bool    `gorm:"not null;default:false" json:"notification_sent"`

	// Associations
	Device Device `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
