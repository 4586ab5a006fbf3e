package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event-specific validation errors
var (
	// ErrEventIDEmpty is returned when an event ID is empty or nil.
	ErrEventIDEmpty = errors.New("event ID cannot be empty")

	// ErrEventTypeEmpty is returned when an event has no type.
	ErrEventTypeEmpty = errors.New("event type cannot be empty")
)

// Event is one append-only audit record for a session. Metadata carries
// derived values only — question keys, answer lengths, risk categories —
// never answer text.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	SessionID uuid.UUID       `json:"session_id"`
	ProfileID uuid.UUID       `json:"profile_id"`
	Type      string          `json:"type"`
	UnitType  UnitType        `json:"unit_type"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent creates an audit event with the given type and metadata payload.
// The payload is serialized to JSON; pass nil for events without metadata.
func NewEvent(sessionID, profileID uuid.UUID, eventType string, unitType UnitType, payload any) (*Event, error) {
	var metadata json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		metadata = b
	}

	event := &Event{
		ID:        uuid.New(),
		SessionID: sessionID,
		ProfileID: profileID,
		Type:      eventType,
		UnitType:  unitType,
		Metadata:  metadata,
		CreatedAt: time.Now().UTC(),
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the Event has valid data.
func (e *Event) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEventIDEmpty
	}

	if e.Type == "" {
		return ErrEventTypeEmpty
	}

	return nil
}
