package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fiberwatch-backend/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Devices
	DeviceByAPIKey(ctx context.Context, apiKey string) (*model.Device, error)
	DeviceByID(ctx context.Context, id string) (*model.Device, error)
	CreateDevice(ctx context.Context, device *model.Device) error
	UpdateDevice(ctx context.Context, device *model.Device) error
	ListDevices(ctx context.Context) ([]model.Device, error)

	// Measurement ledger
	CreateMeasurement(ctx context.Context, m *model.Measurement) error
	ListMeasurements(ctx context.Context, deviceID string, limit, offset int) ([]model.Measurement, error)
	RecentMeasurements(ctx context.Context, limit int) ([]MeasurementWithDevice, error)
	Stats(ctx context.Context) (*Stats, error)

	// Notification audit trail
	RecordDispatchSuccess(ctx context.Context, rec *model.NotificationRecord) error
	RecordDispatchFailure(ctx context.Context, rec *model.NotificationRecord) error
	ListNotifications(ctx context.Context, limit int) ([]NotificationWithDevice, error)

	// Web push subscriptions
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// MeasurementWithDevice is a measurement joined with its device's name.
type MeasurementWithDevice struct {
	model.Measurement
	DeviceName string `json:"device_name"`
}

// NotificationWithDevice is an audit record joined with its device's name.
type NotificationWithDevice struct {
	model.NotificationRecord
	DeviceName string `json:"device_name"`
}

// Stats holds the aggregate figures served to the dashboard.
type Stats struct {
	DeviceCount       int64            `json:"device_count"`
	MeasurementCount  int64            `json:"measurement_count"`
	FaultDistribution map[string]int64 `json:"fault_distribution"`
	NotificationCount int64            `json:"notification_count"`
	RecentAlerts      int64            `json:"recent_alerts"`
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// DeviceByAPIKey resolves a presented credential token to its device.
func (s *gormStore) DeviceByAPIKey(ctx context.Context, apiKey string) (*model.Device, error) {
	var device model.Device
	err := s.db.WithContext(ctx).First(&device, "api_key = ?", apiKey).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up device by api key: %w", err)
	}
	return &device, nil
}

func (s *gormStore) DeviceByID(ctx context.Context, id string) (*model.Device, error) {
	var device model.Device
	err := s.db.WithContext(ctx).First(&device, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up device %s: %w", id, err)
	}
	return &device, nil
}

func (s *gormStore) CreateDevice(ctx context.Context, device *model.Device) error {
	return s.db.WithContext(ctx).Create(device).Error
}

func (s *gormStore) UpdateDevice(ctx context.Context, device *model.Device) error {
	return s.db.WithContext(ctx).Model(device).
		Select("name", "alert_threshold", "alert_email").
		Updates(device).Error
}

func (s *gormStore) ListDevices(ctx context.Context) ([]model.Device, error) {
	var devices []model.Device
	if err := s.db.WithContext(ctx).Order("created_at").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (s *gormStore) CreateMeasurement(ctx context.Context, m *model.Measurement) error {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(m).Error
}

// ListMeasurements returns the device's own measurements, most recent first.
func (s *gormStore) ListMeasurements(ctx context.Context, deviceID string, limit, offset int) ([]model.Measurement, error) {
	if limit <= 0 {
		limit = 100
	}
	var measurements []model.Measurement
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("timestamp DESC").
		Limit(limit).Offset(offset).
		Find(&measurements).Error
	if err != nil {
		return nil, err
	}
	return measurements, nil
}

// RecentMeasurements returns the latest measurements across all devices.
func (s *gormStore) RecentMeasurements(ctx context.Context, limit int) ([]MeasurementWithDevice, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []MeasurementWithDevice
	err := s.db.WithContext(ctx).
		Model(&model.Measurement{}).
		Select("measurements.*, devices.name AS device_name").
		Joins("JOIN devices ON devices.id = measurements.device_id").
		Order("measurements.timestamp DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *gormStore) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{FaultDistribution: make(map[string]int64)}
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.Device{}).Count(&stats.DeviceCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&model.Measurement{}).Count(&stats.MeasurementCount).Error; err != nil {
		return nil, err
	}

	type faultRow struct {
		FaultType string
		Count     int64
	}
	var faults []faultRow
	if err := db.Model(&model.Measurement{}).
		Select("fault_type, COUNT(*) as count").
		Group("fault_type").
		Scan(&faults).Error; err != nil {
		return nil, err
	}
	for _, f := range faults {
		stats.FaultDistribution[f.FaultType] = f.Count
	}

	if err := db.Model(&model.NotificationRecord{}).Count(&stats.NotificationCount).Error; err != nil {
		return nil, err
	}
	dayAgo := time.Now().UTC().Add(-24 * time.Hour)
	if err := db.Model(&model.NotificationRecord{}).
		Where("timestamp > ?", dayAgo).
		Count(&stats.RecentAlerts).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// RecordDispatchSuccess appends the sent audit record and, in the same
// transaction, flags the measurement and advances the device's durable
// last-alert timestamp.
func (s *gormStore) RecordDispatchSuccess(ctx context.Context, rec *model.NotificationRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	rec.Status = model.NotificationSent
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("failed to create notification record: %w", err)
		}
		if err := tx.Model(&model.Measurement{}).
			Where("id = ?", rec.MeasurementID).
			Update("notification_sent", true).Error; err != nil {
			return fmt.Errorf("failed to flag measurement %d: %w", rec.MeasurementID, err)
		}
		if err := tx.Model(&model.Device{}).
			Where("id = ?", rec.DeviceID).
			Update("last_alert_sent", rec.Timestamp).Error; err != nil {
			return fmt.Errorf("failed to update device %s last alert: %w", rec.DeviceID, err)
		}
		return nil
	})
}

// RecordDispatchFailure appends the failed audit record. The measurement flag
// and the device's last-alert timestamp are left untouched.
func (s *gormStore) RecordDispatchFailure(ctx context.Context, rec *model.NotificationRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	rec.Status = model.NotificationFailed
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *gormStore) ListNotifications(ctx context.Context, limit int) ([]NotificationWithDevice, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []NotificationWithDevice
	err := s.db.WithContext(ctx).
		Model(&model.NotificationRecord{}).
		Select("notification_records.*, devices.name AS device_name").
		Joins("JOIN devices ON devices.id = notification_records.device_id").
		Order("notification_records.timestamp DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(sub).Error
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
