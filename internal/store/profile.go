package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/unit-api/internal/domain"
)

// ProfileStore defines the interface for profile data persistence.
type ProfileStore interface {
	// Upsert inserts the profile, or refreshes display name and birth info
	// on the existing row keyed by OwnerHash. The operation is atomic
	// (INSERT ... ON CONFLICT) and returns the stored profile — when a row
	// already exists, the returned profile carries the existing ID.
	Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)

	// GetByID retrieves a profile by its unique ID.
	// Returns ErrProfileNotFound if the profile does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)

	// WithTxProfileStore returns a new ProfileStore instance that uses the
	// provided transaction. The transaction is created and managed by the
	// caller (typically a service via store.RunInTransaction).
	WithTxProfileStore(tx *sql.Tx) ProfileStore
}
