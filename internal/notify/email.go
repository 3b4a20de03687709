package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/config"
)

const smtpTimeout = 30 * time.Second

type mailDialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailSender delivers HTML email over SMTP.
type EmailSender struct {
	client mailDialer
	from   string
	logger *zap.Logger
}

// NewEmailSender builds an SMTP client. Authentication is enabled only when a
// username and password are both set.
func NewEmailSender(cfg config.MailConfig, logger *zap.Logger) (*EmailSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(smtpTimeout),
	}
	if cfg.Username != "" && cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	if cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return &EmailSender{client: client, from: cfg.From(), logger: logger}, nil
}

func (e *EmailSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := e.message(to, subject, htmlBody)
	if err != nil {
		return err
	}
	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	e.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (e *EmailSender) message(to, subject, htmlBody string) (*mail.Msg, error) {
	if to == "" {
		return nil, ErrMissingRecipient
	}
	msg := mail.NewMsg()
	if err := msg.From(e.from); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}
