package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/unit-api/internal/domain"
)

// ResultStore defines the interface for unit result persistence.
// Results hold only derived and filtered fields; the schema has no column
// for answer text.
type ResultStore interface {
	// Create saves a completed unit's result and returns nil on success.
	// Returns ErrResultExists if a result was already written for the
	// session — completion is one-shot.
	// IMPORTANT: run within the same transaction as
	// SessionStore.MarkCompleted (see store.RunInTransaction).
	Create(ctx context.Context, result *domain.UnitResult) error

	// GetBySessionID retrieves the result written for a session.
	// Returns ErrResultNotFound if no result exists.
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.UnitResult, error)

	// WithTxResultStore returns a new ResultStore instance that uses the
	// provided transaction.
	WithTxResultStore(tx *sql.Tx) ResultStore
}
