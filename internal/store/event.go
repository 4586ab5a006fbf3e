package store

import (
	"context"

	"github.com/phrazzld/unit-api/internal/domain"
)

// EventStore defines the interface for the append-only audit log.
// Events are secondary writes: callers log append failures and continue,
// they never abort the primary transition.
type EventStore interface {
	// Append inserts one audit event. Events are never updated or deleted.
	Append(ctx context.Context, event *domain.Event) error
}
