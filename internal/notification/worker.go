package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gopkg.in/gomail.v2"

	"fiberwatch-backend/config"
	"fiberwatch-backend/internal/classifier"
	"fiberwatch-backend/internal/metrics"
	"fiberwatch-backend/internal/model"
	"fiberwatch-backend/internal/store"
)

// ErrQueueFull is returned by Dispatch when the bounded job queue is full.
// The alert is dropped rather than blocking the ingesting caller.
var ErrQueueFull = errors.New("notification queue is full")

// Job is one alert to be dispatched off the ingestion path.
type Job struct {
	Device      model.Device
	Measurement model.Measurement
	Category    classifier.Category
	Confidence  float64
	Recipients  []string
}

// WorkerPool manages a fixed pool of workers draining a bounded alert queue.
type WorkerPool struct {
	size   int
	jobs   chan Job
	store  store.Store
	mail   config.MailConfig
	sender MessageSender

	push       *webpush.Options
	pushSender PushSender
}

// NewWorkerPool creates a worker pool with the configured size and queue bound.
func NewWorkerPool(cfg *config.Config, s store.Store) *WorkerPool {
	wp := &WorkerPool{
		size:       cfg.WorkerPool.Size,
		jobs:       make(chan Job, cfg.WorkerPool.QueueSize),
		store:      s,
		mail:       cfg.Mail,
		sender:     NewSMTPSender(cfg.Mail),
		pushSender: &WebPushSender{},
	}
	if cfg.Push.Enabled && cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		wp.push = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	}
	return wp
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// worker is the actual worker goroutine.
func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case job := <-wp.jobs:
			wp.process(ctx, job)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch enqueues an alert without blocking. When the queue is full it
// returns ErrQueueFull and the alert is not delivered.
func (wp *WorkerPool) Dispatch(job Job) error {
	select {
	case wp.jobs <- job:
		return nil
	default:
		metrics.DispatchQueueFull.Inc()
		return ErrQueueFull
	}
}

// process sends the alert mail and records the outcome in the audit trail.
// A transport failure is recorded and never retried; the measurement flag and
// the device's durable last-alert timestamp advance only on success.
func (wp *WorkerPool) process(ctx context.Context, job Job) {
	recipients, err := json.Marshal(job.Recipients)
	if err != nil {
		recipients = []byte("[]")
	}
	rec := &model.NotificationRecord{
		DeviceID:      job.Device.ID,
		MeasurementID: job.Measurement.ID,
		FaultType:     string(job.Category),
		Recipients:    string(recipients),
	}

	if sendErr := wp.sendMail(job); sendErr != nil {
		log.Printf("Failed to send alert for measurement %d: %v", job.Measurement.ID, sendErr)
		metrics.NotificationsDispatched.WithLabelValues(model.NotificationFailed).Inc()
		rec.ErrorMessage = sendErr.Error()
		if err := wp.store.RecordDispatchFailure(ctx, rec); err != nil {
			log.Printf("Failed to record dispatch failure for measurement %d: %v", job.Measurement.ID, err)
		}
		return
	}

	log.Printf("Alert sent for device %s, fault: %s", job.Device.ID, job.Category)
	metrics.NotificationsDispatched.WithLabelValues(model.NotificationSent).Inc()
	if err := wp.store.RecordDispatchSuccess(ctx, rec); err != nil {
		log.Printf("Failed to record dispatch success for measurement %d: %v", job.Measurement.ID, err)
	}

	wp.broadcastPush(ctx, job)
}

// sendMail composes and delivers the alert through the SMTP transport.
func (wp *WorkerPool) sendMail(job Job) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", wp.mail.From)
	msg.SetHeader("To", job.Recipients...)
	msg.SetHeader("Subject", Subject(wp.mail.SubjectPrefix, job.Category, job.Device.Name))
	msg.SetBody("text/html", ComposeAlertBody(&job.Device, &job.Measurement, job.Category, job.Confidence))
	return wp.sender.Send(msg)
}

// SendTest delivers a synthetic test mail through the real transport,
// synchronously. Used by the test-dispatch endpoint.
func (wp *WorkerPool) SendTest(recipients []string) error {
	if len(recipients) == 0 {
		recipients = wp.mail.To
	}
	if len(recipients) == 0 {
		return errors.New("no recipients specified")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", wp.mail.From)
	msg.SetHeader("To", recipients...)
	msg.SetHeader("Subject", fmt.Sprintf("%s Test Email", wp.mail.SubjectPrefix))
	msg.SetBody("text/html", ComposeTestBody())
	return wp.sender.Send(msg)
}

// broadcastPush fans the alert out to dashboard push subscriptions. Push is
// best-effort: failures are logged and do not touch the audit trail.
func (wp *WorkerPool) broadcastPush(ctx context.Context, job Job) {
	if wp.push == nil {
		return
	}
	subs, err := wp.store.ListSubscriptions(ctx)
	if err != nil {
		log.Printf("Error fetching push subscriptions: %v", err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload := fmt.Sprintf("%s detected on %s (confidence %.0f%%)",
		job.Category, job.Device.Name, job.Confidence*100)
	for _, sub := range subs {
		wp.sendPush(ctx, sub, []byte(payload))
	}
}

// sendPush sends a single web push notification.
func (wp *WorkerPool) sendPush(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.pushSender.Send(payload, wpSub, wp.push)
	if err != nil {
		log.Printf("Error sending push notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Push subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
