package events

import (
	"time"

	"github.com/spec-kit/pass-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserInvited       EventType = "user_invited"
	EventUserRegistered    EventType = "user_registered"
	EventUserStatusChanged EventType = "user_status_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserInvitedPayload payload.
type UserInvitedPayload struct {
	Email string `json:"email"`
}

// UserRegisteredPayload payload. Carries what the pass-delivery pipeline
// needs so the handler does not re-read the record.
type UserRegisteredPayload struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserStatusChangedPayload payload.
type UserStatusChangedPayload struct {
	OldStatus domain.UserStatus `json:"old_status"`
	NewStatus domain.UserStatus `json:"new_status"`
}
