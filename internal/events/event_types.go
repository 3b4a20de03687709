package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/visitordesk/visitor-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventVisitorCheckedIn  EventType = "visitor_checked_in"
	EventVisitorCheckedOut EventType = "visitor_checked_out"
	EventUserPasswordReset EventType = "user_password_reset"
)

// Actor identifies the operator that caused an event.
type Actor struct {
	UserID   int64  `json:"user_id,omitempty"`
	Username string `json:"username,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// VisitorCheckedInPayload payload.
type VisitorCheckedInPayload struct {
	VisitorID      int64                 `json:"visitor_id"`
	VisitorName    string                `json:"visitor_name"`
	VisitorPhone   string                `json:"visitor_phone"`
	VisitorProfile domain.VisitorProfile `json:"visitor_profile"`
	StaffID        int64                 `json:"staff_id"`
	StaffName      string                `json:"staff_name"`
	StaffPhone     string                `json:"staff_phone"`
	StaffEmail     *string               `json:"staff_email,omitempty"`
	CheckedInAt    time.Time             `json:"checked_in_at"`
}

// VisitorCheckedOutPayload payload.
type VisitorCheckedOutPayload struct {
	VisitorID    int64     `json:"visitor_id"`
	VisitorName  string    `json:"visitor_name"`
	CheckedOutAt time.Time `json:"checked_out_at"`
}

// UserPasswordResetPayload payload.
type UserPasswordResetPayload struct {
	UserID   int64   `json:"user_id"`
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
	ResetBy  string  `json:"reset_by"`
}
