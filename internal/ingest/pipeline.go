package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fiberwatch-backend/config"
	"fiberwatch-backend/internal/alerting"
	"fiberwatch-backend/internal/classifier"
	"fiberwatch-backend/internal/metrics"
	"fiberwatch-backend/internal/model"
	"fiberwatch-backend/internal/notification"
	"fiberwatch-backend/internal/store"
)

// Reading is one raw measurement submitted by a device.
type Reading struct {
	SignalPower float64
	Attenuation float64
	Distance    float64
}

// Result is what the ingesting caller gets back, synchronously, regardless of
// any dispatch happening in the background.
type Result struct {
	Measurement   *model.Measurement
	Category      classifier.Category
	Confidence    float64
	Probabilities map[classifier.Category]float64
}

// Pipeline runs the ingestion flow for authenticated measurements:
// classify, persist, gate, and hand qualifying alerts to the dispatcher.
type Pipeline struct {
	store      store.Store
	classifier *classifier.Classifier
	gate       *alerting.Gate
	pool       *notification.WorkerPool
	mail       config.MailConfig
}

// New assembles a Pipeline from its collaborators.
func New(cfg *config.Config, s store.Store, c *classifier.Classifier, g *alerting.Gate, pool *notification.WorkerPool) *Pipeline {
	return &Pipeline{
		store:      s,
		classifier: c,
		gate:       g,
		pool:       pool,
		mail:       cfg.Mail,
	}
}

// Submit ingests one reading for an already-authenticated device. The caller
// receives the classification as soon as the measurement is persisted; a
// triggered alert is dispatched on the worker pool and its outcome is only
// observable through the audit trail.
func (p *Pipeline) Submit(ctx context.Context, device *model.Device, r Reading) (*Result, error) {
	cls := p.classifier.Classify(r.SignalPower, r.Attenuation, r.Distance)

	m := &model.Measurement{
		DeviceID:    device.ID,
		Timestamp:   time.Now().UTC(),
		SignalPower: r.SignalPower,
		Attenuation: r.Attenuation,
		Distance:    r.Distance,
		FaultType:   string(cls.Category),
		Confidence:  cls.Confidence,
	}
	if err := p.store.CreateMeasurement(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to persist measurement: %w", err)
	}
	metrics.MeasurementsIngested.WithLabelValues(m.FaultType).Inc()

	// The gate is only consulted when someone can be mailed: a qualifying
	// event with no recipients must not consume the device's cooldown window.
	recipients := notification.Recipients(p.mail.To, device.AlertEmail)
	if len(recipients) == 0 {
		if cls.Category != classifier.NoFault {
			log.Printf("Alert for device %s suppressed: no recipients configured", device.ID)
			metrics.GateDecisions.WithLabelValues(metrics.OutcomeNoRecipients).Inc()
		}
	} else if p.gate.ShouldNotify(device.ID, cls.Category, cls.Confidence, device.AlertThreshold) {
		job := notification.Job{
			Device:      *device,
			Measurement: *m,
			Category:    cls.Category,
			Confidence:  cls.Confidence,
			Recipients:  recipients,
		}
		if err := p.pool.Dispatch(job); err != nil {
			if errors.Is(err, notification.ErrQueueFull) {
				log.Printf("Alert for measurement %d dropped: %v", m.ID, err)
				metrics.GateDecisions.WithLabelValues(metrics.OutcomeQueueRejected).Inc()
			} else {
				log.Printf("Failed to dispatch alert for measurement %d: %v", m.ID, err)
			}
		}
	}

	return &Result{
		Measurement:   m,
		Category:      cls.Category,
		Confidence:    cls.Confidence,
		Probabilities: cls.Probabilities,
	}, nil
}
