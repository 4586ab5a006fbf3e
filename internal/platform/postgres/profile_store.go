package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/store"
)

// PostgresProfileStore implements the store.ProfileStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProfileStore struct {
	db store.DBTX
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the
// ProfileStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
func NewPostgresProfileStore(db store.DBTX) *PostgresProfileStore {
	return &PostgresProfileStore{db: db}
}

// Ensure PostgresProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// Upsert implements store.ProfileStore.Upsert
func (s *PostgresProfileStore) Upsert(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO profiles (id, owner_hash, display_name, birth_year_month, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_hash) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			birth_year_month = EXCLUDED.birth_year_month,
			updated_at = EXCLUDED.updated_at
		RETURNING id, owner_hash, display_name, birth_year_month, created_at, updated_at
	`

	stored := &domain.Profile{}
	err := s.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.OwnerHash,
		profile.DisplayName,
		profile.BirthYearMonth,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(
		&stored.ID,
		&stored.OwnerHash,
		&stored.DisplayName,
		&stored.BirthYearMonth,
		&stored.CreatedAt,
		&stored.UpdatedAt,
	)
	if err != nil {
		return nil, store.NewStoreError("profile", "upsert", "failed to upsert profile", err)
	}

	return stored, nil
}

// GetByID implements store.ProfileStore.GetByID
func (s *PostgresProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `
		SELECT id, owner_hash, display_name, birth_year_month, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`

	profile := &domain.Profile{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.OwnerHash,
		&profile.DisplayName,
		&profile.BirthYearMonth,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, store.NewStoreError("profile", "get", "failed to get profile", err)
	}

	return profile, nil
}

// WithTxProfileStore implements store.ProfileStore.WithTxProfileStore
func (s *PostgresProfileStore) WithTxProfileStore(tx *sql.Tx) store.ProfileStore {
	return NewPostgresProfileStore(tx)
}
