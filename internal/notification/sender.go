package notification

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gopkg.in/gomail.v2"

	"fiberwatch-backend/config"
)

// ErrMailDisabled is returned by the SMTP sender when the mail transport is
// disabled or not configured. It surfaces as an ordinary dispatch failure.
var ErrMailDisabled = errors.New("mail transport is disabled or not configured")

// MessageSender defines the interface for delivering an alert mail.
type MessageSender interface {
	Send(msg *gomail.Message) error
}

// SMTPSender is a real implementation of MessageSender backed by gomail.
type SMTPSender struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

// NewSMTPSender creates a sender for the configured SMTP server. STARTTLS is
// negotiated automatically when the server offers it; implicit TLS is used on
// the SMTPS port.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.UseTLS && cfg.Port == 465
	return &SMTPSender{cfg: cfg, dialer: d}
}

// Send connects to the SMTP server and delivers the message.
func (s *SMTPSender) Send(msg *gomail.Message) error {
	if !s.cfg.Enabled || s.cfg.Username == "" || s.cfg.Password == "" {
		return ErrMailDisabled
	}
	return s.dialer.DialAndSend(msg)
}

// PushSender defines the interface for sending a web push notification.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of PushSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}
