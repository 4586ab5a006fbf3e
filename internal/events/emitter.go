package events

import (
	"context"
	"log/slog"

	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/store"
)

// StoreEmitter persists audit events through a store.EventStore.
type StoreEmitter struct {
	events store.EventStore
	logger *slog.Logger
}

// NewStoreEmitter creates an emitter that appends events to the given store.
// If logger is nil, the default logger is used.
func NewStoreEmitter(events store.EventStore, logger *slog.Logger) *StoreEmitter {
	if events == nil {
		panic("event store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreEmitter{
		events: events,
		logger: logger.With("component", "event_emitter"),
	}
}

// Ensure StoreEmitter implements the Emitter interface
var _ Emitter = (*StoreEmitter)(nil)

// Emit appends the event to the audit log. Failures are logged here as
// well as returned, since most callers deliberately drop the error.
func (e *StoreEmitter) Emit(ctx context.Context, event *domain.Event) error {
	if err := event.Validate(); err != nil {
		e.logger.Warn("refusing to emit invalid event",
			"error", err,
			"event_type", event.Type)
		return err
	}

	if err := e.events.Append(ctx, event); err != nil {
		e.logger.Error("failed to append audit event",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
			"session_id", event.SessionID)
		return err
	}

	e.logger.Debug("audit event recorded",
		"event_id", event.ID,
		"event_type", event.Type,
		"session_id", event.SessionID)
	return nil
}
