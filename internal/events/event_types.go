package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionIssued    EventType = "session_issued"
	EventSessionRefreshed EventType = "session_refreshed"
	EventSessionRevoked   EventType = "session_revoked"
	EventTokenRejected    EventType = "token_rejected"
)

// Event represents a session lifecycle event emitted by the service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// NewEvent stamps an event with an ID and the current time.
func NewEvent(eventType EventType, subject string, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

// TokenIssuedPayload payload.
type TokenIssuedPayload struct {
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Refreshed bool      `json:"refreshed"`
}

// TokenRejectedPayload payload.
type TokenRejectedPayload struct {
	Reason string `json:"reason"`
	Source string `json:"source"`
}

// TokenRevokedPayload payload.
type TokenRevokedPayload struct {
	TokenID   string        `json:"token_id"`
	Remaining time.Duration `json:"remaining"`
}
