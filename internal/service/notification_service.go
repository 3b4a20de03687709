package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/events"
	"github.com/visitordesk/visitor-service/internal/notify"
)

// NotificationOptions configures NotificationService.
type NotificationOptions struct {
	Enabled            bool
	CheckInTemplateSID string
}

// NotificationService turns domain events into outbound messages.
type NotificationService struct {
	sender notify.Sender
	logger *zap.Logger
	opts   NotificationOptions
}

// NewNotificationService creates the service.
func NewNotificationService(sender notify.Sender, logger *zap.Logger, opts NotificationOptions) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		sender: sender,
		logger: logger,
		opts:   opts,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil || !n.opts.Enabled {
		return
	}
	dispatcher.Subscribe(events.EventVisitorCheckedIn, n.handleVisitorCheckedIn)
	dispatcher.Subscribe(events.EventVisitorCheckedOut, n.handleVisitorCheckedOut)
	dispatcher.Subscribe(events.EventUserPasswordReset, n.handleUserPasswordReset)
}

func (n *NotificationService) handleVisitorCheckedIn(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VisitorCheckedInPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("VisitorCheckedIn",
		zap.Int64("visitor_id", payload.VisitorID),
		zap.Int64("staff_id", payload.StaffID))

	var firstErr error
	if payload.StaffPhone != "" {
		params := map[string]string{
			"1": payload.StaffName,
			"2": payload.VisitorName,
			"3": string(payload.VisitorProfile),
			"4": payload.CheckedInAt.Format("02 Jan 2006 15:04"),
		}
		if err := n.sender.SendWhatsApp(ctx, payload.StaffPhone, n.opts.CheckInTemplateSID, params); err != nil {
			firstErr = err
		}
	}

	if payload.StaffEmail != nil && *payload.StaffEmail != "" {
		subject, body, err := notify.RenderCheckIn(notify.CheckInEmail{
			StaffName:      payload.StaffName,
			VisitorName:    payload.VisitorName,
			VisitorProfile: string(payload.VisitorProfile),
			VisitorPhone:   payload.VisitorPhone,
			CheckedInAt:    payload.CheckedInAt,
		})
		if err == nil {
			err = n.sender.SendEmail(ctx, *payload.StaffEmail, subject, body)
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (n *NotificationService) handleVisitorCheckedOut(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VisitorCheckedOutPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("VisitorCheckedOut",
		zap.Int64("visitor_id", payload.VisitorID),
		zap.String("visitor_name", payload.VisitorName),
		zap.Time("checked_out_at", payload.CheckedOutAt))
	return nil
}

func (n *NotificationService) handleUserPasswordReset(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserPasswordResetPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("UserPasswordReset",
		zap.Int64("user_id", payload.UserID),
		zap.String("reset_by", payload.ResetBy))

	if payload.Email == nil || *payload.Email == "" {
		n.logger.Debug("no email on file; skipping reset notice", zap.Int64("user_id", payload.UserID))
		return nil
	}
	subject, body, err := notify.RenderPasswordReset(notify.PasswordResetEmail{
		Username: payload.Username,
		ResetBy:  payload.ResetBy,
		ResetAt:  event.Timestamp,
	})
	if err != nil {
		return err
	}
	return n.sender.SendEmail(ctx, *payload.Email, subject, body)
}
