package postgres

import (
	"context"
	"fmt"

	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/store"
)

// PostgresEventStore implements the store.EventStore interface using a
// PostgreSQL database as the storage backend. The table is append-only.
type PostgresEventStore struct {
	db store.DBTX
}

// NewPostgresEventStore creates a new PostgreSQL implementation of the
// EventStore interface.
func NewPostgresEventStore(db store.DBTX) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

// Ensure PostgresEventStore implements store.EventStore interface
var _ store.EventStore = (*PostgresEventStore)(nil)

// Append implements store.EventStore.Append
func (s *PostgresEventStore) Append(ctx context.Context, event *domain.Event) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO unit_events (id, session_id, profile_id, type, unit_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.ExecContext(ctx, query,
		event.ID,
		event.SessionID,
		event.ProfileID,
		event.Type,
		event.UnitType,
		[]byte(event.Metadata),
		event.CreatedAt,
	)
	if err != nil {
		return store.NewStoreError("event", "append", "failed to append event", err)
	}

	return nil
}
