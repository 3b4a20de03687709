package notify

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrMissingRecipient is returned when a message has no destination.
var ErrMissingRecipient = errors.New("notification requires a recipient")

// Sender delivers outbound notifications.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
	SendWhatsApp(ctx context.Context, to, templateID string, params map[string]string) error
}

// EmailChannel is implemented by EmailSender.
type EmailChannel interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// WhatsAppChannel is implemented by WhatsAppSender.
type WhatsAppChannel interface {
	SendWhatsApp(ctx context.Context, to, templateID string, params map[string]string) error
}

// Notifier fans out to whichever channels are configured. A nil channel is
// logged and skipped.
type Notifier struct {
	email    EmailChannel
	whatsapp WhatsAppChannel
	logger   *zap.Logger
}

func NewNotifier(email EmailChannel, whatsapp WhatsAppChannel, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{email: email, whatsapp: whatsapp, logger: logger}
}

func (n *Notifier) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if strings.TrimSpace(to) == "" {
		return ErrMissingRecipient
	}
	if n.email == nil {
		n.logger.Info("email channel not configured; skipping", zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	return n.email.SendEmail(ctx, to, subject, htmlBody)
}

func (n *Notifier) SendWhatsApp(ctx context.Context, to, templateID string, params map[string]string) error {
	if strings.TrimSpace(to) == "" {
		return ErrMissingRecipient
	}
	if n.whatsapp == nil || templateID == "" {
		n.logger.Info("whatsapp channel not configured; skipping", zap.String("to", to), zap.String("template", templateID))
		return nil
	}
	return n.whatsapp.SendWhatsApp(ctx, to, templateID, params)
}
