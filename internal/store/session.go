package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/unit-api/internal/domain"
)

// SessionStore defines the interface for session data persistence.
// The session row is the system of record for lifecycle state; raw answer
// text must never pass through this interface — note that no method
// accepts free text.
type SessionStore interface {
	// Create saves a new session to the store.
	// Returns validation errors if the session data is invalid.
	// Returns ErrInvalidEntity if the profile ID doesn't exist (foreign key violation).
	Create(ctx context.Context, session *domain.Session) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// UpdateProgress persists an advanced question index, answer count and
	// risk level. The update is conditional on forward progress: rows where
	// the stored index already exceeds the new one are left untouched and
	// ErrUpdateFailed is returned, so the index is monotonic even under a
	// racing duplicate submit.
	UpdateProgress(ctx context.Context, session *domain.Session) error

	// UpdateStatus persists a status transition (pause, expire, abandon)
	// together with the session's risk level.
	// Returns ErrSessionNotFound if the session does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus, risk domain.RiskLevel) error

	// MarkCompleted persists the terminal completion state: status,
	// completion timestamp and share token.
	// IMPORTANT: run within the same transaction as ResultStore.Create so a
	// completed session and its result are written atomically.
	// Returns ErrSessionNotFound if the session does not exist.
	MarkCompleted(ctx context.Context, session *domain.Session) error

	// WithTxSessionStore returns a new SessionStore instance that uses the
	// provided transaction. The transaction is created and managed by the
	// caller (typically a service via store.RunInTransaction).
	WithTxSessionStore(tx *sql.Tx) SessionStore
}
