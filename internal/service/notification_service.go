package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helper-marketplace/internal/config"
	"github.com/spec-kit/helper-marketplace/internal/events"
)

// EmailMessage is a rendered notification email.
type EmailMessage struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Mailer delivers notification emails.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	mailer     Mailer
}

// NewNotificationService creates the service. Emails go to a stub mailer
// that only logs envelope fields until WithMailer installs a real one.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	logger = loggerOrNop(logger)
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		mailer:     stubMailer{logger: logger},
	}
}

// WithMailer replaces the email transport.
func (n *NotificationService) WithMailer(m Mailer) *NotificationService {
	if m != nil {
		n.mailer = m
	}
	return n
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBookingCreated, n.handleBookingCreated)
	n.dispatcher.Subscribe(events.EventBookingStatusChanged, n.handleBookingStatusChanged)
	n.dispatcher.Subscribe(events.EventHelperChanged, n.handleChanged)
	n.dispatcher.Subscribe(events.EventUserChanged, n.handleChanged)
	n.dispatcher.Subscribe(events.EventContactChanged, n.handleChanged)
	n.dispatcher.Subscribe(events.EventPasswordResetRequested, n.handlePasswordResetRequested)
}

func (n *NotificationService) handleBookingCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingCreated", zap.String("booking_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event, "")
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleBookingStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("BookingStatusChanged", zap.String("booking_id", event.SubjectID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleChanged(ctx context.Context, event events.Event) error {
	n.logger.Debug("RecordChanged",
		zap.String("event_type", string(event.Type)),
		zap.String("subject_id", event.SubjectID),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handlePasswordResetRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PasswordResetRequestedPayload)
	if !ok {
		n.logger.Warn("PasswordResetRequested without payload", zap.String("user_id", event.SubjectID))
		return nil
	}
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		n.logger.Warn("password reset not delivered: no email sender configured", zap.String("user_id", event.SubjectID))
		return nil
	}
	err := n.mailer.Send(ctx, EmailMessage{
		From:    n.cfg.EmailFrom,
		To:      payload.Email,
		Subject: "Reset your password",
		Body: "Use the link below to choose a new password. It expires at " +
			payload.ExpiresAt.Format(time.RFC1123) + ".\n\n" + n.resetLink(payload.Token) + "\n",
	})
	if err != nil {
		n.logger.Error("password reset delivery failed", zap.String("user_id", event.SubjectID), zap.Error(err))
		return nil
	}
	n.logger.Info("password reset delivered",
		zap.String("user_id", event.SubjectID),
		zap.Time("expires_at", payload.ExpiresAt))
	return nil
}

func (n *NotificationService) resetLink(token string) string {
	base := strings.TrimSpace(n.cfg.ResetLinkBase)
	if base == "" {
		return token
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	err := n.mailer.Send(ctx, EmailMessage{
		From:    n.cfg.EmailFrom,
		To:      to,
		Subject: string(event.Type),
		Body:    "subject " + event.SubjectID,
	})
	if err != nil {
		n.logger.Warn("email notification failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// stubMailer logs the envelope. Bodies may carry credentials and are never
// logged.
type stubMailer struct {
	logger *zap.Logger
}

func (m stubMailer) Send(_ context.Context, msg EmailMessage) error {
	m.logger.Debug("sendEmailNotificationStub",
		zap.String("from", msg.From),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("subject_id", event.SubjectID),
		zap.String("event_type", string(event.Type)))
}
