package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/store"
)

// PostgresResultStore implements the store.ResultStore interface
// using a PostgreSQL database as the storage backend. Sub-scores and
// keywords are stored as JSONB; there is no column for answer text.
type PostgresResultStore struct {
	db store.DBTX
}

// NewPostgresResultStore creates a new PostgreSQL implementation of the
// ResultStore interface.
func NewPostgresResultStore(db store.DBTX) *PostgresResultStore {
	return &PostgresResultStore{db: db}
}

// Ensure PostgresResultStore implements store.ResultStore interface
var _ store.ResultStore = (*PostgresResultStore)(nil)

// Create implements store.ResultStore.Create
func (s *PostgresResultStore) Create(ctx context.Context, result *domain.UnitResult) error {
	if err := result.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	subScores, err := json.Marshal(result.SubScores)
	if err != nil {
		return store.NewStoreError("result", "create", "failed to marshal sub-scores", err)
	}
	keywords, err := json.Marshal(result.Keywords)
	if err != nil {
		return store.NewStoreError("result", "create", "failed to marshal keywords", err)
	}

	query := `
		INSERT INTO unit_results (
			id, session_id, profile_id, unit_type, category, composite_score,
			sub_scores, energy_type, encouragement, insight, next_unit_hint,
			keywords, duration_seconds, answer_count, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err = s.db.ExecContext(ctx, query,
		result.ID,
		result.SessionID,
		result.ProfileID,
		result.UnitType,
		result.Category,
		result.CompositeScore,
		subScores,
		result.EnergyType,
		result.Encouragement,
		result.Insight,
		result.NextUnitHint,
		keywords,
		result.DurationSeconds,
		result.AnswerCount,
		result.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrResultExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: session or profile does not exist", store.ErrInvalidEntity)
		}
		return store.NewStoreError("result", "create", "failed to create result", err)
	}

	return nil
}

// GetBySessionID implements store.ResultStore.GetBySessionID
func (s *PostgresResultStore) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.UnitResult, error) {
	query := `
		SELECT id, session_id, profile_id, unit_type, category, composite_score,
			sub_scores, energy_type, encouragement, insight, next_unit_hint,
			keywords, duration_seconds, answer_count, created_at
		FROM unit_results
		WHERE session_id = $1
	`

	result := &domain.UnitResult{}
	var subScores, keywords []byte
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&result.ID,
		&result.SessionID,
		&result.ProfileID,
		&result.UnitType,
		&result.Category,
		&result.CompositeScore,
		&subScores,
		&result.EnergyType,
		&result.Encouragement,
		&result.Insight,
		&result.NextUnitHint,
		&keywords,
		&result.DurationSeconds,
		&result.AnswerCount,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrResultNotFound
		}
		return nil, store.NewStoreError("result", "get", "failed to get result", err)
	}

	if err := json.Unmarshal(subScores, &result.SubScores); err != nil {
		return nil, store.NewStoreError("result", "get", "failed to unmarshal sub-scores", err)
	}
	if err := json.Unmarshal(keywords, &result.Keywords); err != nil {
		return nil, store.NewStoreError("result", "get", "failed to unmarshal keywords", err)
	}

	return result, nil
}

// WithTxResultStore implements store.ResultStore.WithTxResultStore
func (s *PostgresResultStore) WithTxResultStore(tx *sql.Tx) store.ResultStore {
	return NewPostgresResultStore(tx)
}
