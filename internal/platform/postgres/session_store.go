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

// PostgresSessionStore implements the store.SessionStore interface
// using a PostgreSQL database as the storage backend. The session row is
// the system of record for lifecycle state; no query here touches answer
// text because the schema has no column for it.
type PostgresSessionStore struct {
	db store.DBTX
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the
// SessionStore interface.
func NewPostgresSessionStore(db store.DBTX) *PostgresSessionStore {
	return &PostgresSessionStore{db: db}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO unit_sessions (
			id, profile_id, unit_type, status, current_question_idx,
			answer_count, risk_level, started_at, expires_at, completed_at, share_token
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.ProfileID,
		session.UnitType,
		session.Status,
		session.CurrentQuestionIdx,
		session.AnswerCount,
		session.RiskLevel,
		session.StartedAt,
		session.ExpiresAt,
		session.CompletedAt,
		nullableString(session.ShareToken),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: profile does not exist", store.ErrInvalidEntity)
		}
		return store.NewStoreError("session", "create", "failed to create session", err)
	}

	return nil
}

// GetByID implements store.SessionStore.GetByID
func (s *PostgresSessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	query := `
		SELECT id, profile_id, unit_type, status, current_question_idx,
			answer_count, risk_level, started_at, expires_at, completed_at, share_token
		FROM unit_sessions
		WHERE id = $1
	`

	session := &domain.Session{}
	var shareToken sql.NullString
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.ProfileID,
		&session.UnitType,
		&session.Status,
		&session.CurrentQuestionIdx,
		&session.AnswerCount,
		&session.RiskLevel,
		&session.StartedAt,
		&session.ExpiresAt,
		&session.CompletedAt,
		&shareToken,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		return nil, store.NewStoreError("session", "get", "failed to get session", err)
	}
	session.ShareToken = shareToken.String

	return session, nil
}

// UpdateProgress implements store.SessionStore.UpdateProgress
func (s *PostgresSessionStore) UpdateProgress(ctx context.Context, session *domain.Session) error {
	// The index condition makes progress monotonic: a racing duplicate
	// submit whose index is already behind updates zero rows.
	query := `
		UPDATE unit_sessions
		SET current_question_idx = $2, answer_count = $3, risk_level = $4
		WHERE id = $1 AND current_question_idx < $2
	`

	result, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.CurrentQuestionIdx,
		session.AnswerCount,
		session.RiskLevel,
	)
	if err != nil {
		return store.NewStoreError("session", "update", "failed to update progress", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("session", "update", "failed to check rows affected", err)
	}
	if rows == 0 {
		return store.ErrUpdateFailed
	}

	return nil
}

// UpdateStatus implements store.SessionStore.UpdateStatus
func (s *PostgresSessionStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.SessionStatus, risk domain.RiskLevel) error {
	query := `
		UPDATE unit_sessions
		SET status = $2, risk_level = $3
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query, id, status, risk)
	if err != nil {
		return store.NewStoreError("session", "update", "failed to update status", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("session", "update", "failed to check rows affected", err)
	}
	if rows == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// MarkCompleted implements store.SessionStore.MarkCompleted
func (s *PostgresSessionStore) MarkCompleted(ctx context.Context, session *domain.Session) error {
	query := `
		UPDATE unit_sessions
		SET status = $2, completed_at = $3, share_token = $4
		WHERE id = $1
	`

	result, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.Status,
		session.CompletedAt,
		nullableString(session.ShareToken),
	)
	if err != nil {
		return store.NewStoreError("session", "update", "failed to mark session completed", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return store.NewStoreError("session", "update", "failed to check rows affected", err)
	}
	if rows == 0 {
		return store.ErrSessionNotFound
	}

	return nil
}

// WithTxSessionStore implements store.SessionStore.WithTxSessionStore
func (s *PostgresSessionStore) WithTxSessionStore(tx *sql.Tx) store.SessionStore {
	return NewPostgresSessionStore(tx)
}

// nullableString maps the empty string to NULL for optional columns.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
