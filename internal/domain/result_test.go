package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnitResult(t *testing.T) {
	result, err := NewUnitResult(uuid.New(), uuid.New(), UnitSelf)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, result.ID)
	assert.Equal(t, 50, result.CompositeScore)
}

func TestUnitResultValidate(t *testing.T) {
	valid := func() *UnitResult {
		return &UnitResult{
			ID:             uuid.New(),
			SessionID:      uuid.New(),
			ProfileID:      uuid.New(),
			UnitType:       UnitRelationship,
			CompositeScore: 72,
			SubScores:      SubScores{Vitality: 58, Relationship: 86, Growth: 72, Resolve: 65, Stability: 79},
		}
	}

	t.Run("valid result", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("composite below floor", func(t *testing.T) {
		r := valid()
		r.CompositeScore = 49
		assert.ErrorIs(t, r.Validate(), ErrCompositeScoreOutOfRange)
	})

	t.Run("composite above ceiling", func(t *testing.T) {
		r := valid()
		r.CompositeScore = 101
		assert.ErrorIs(t, r.Validate(), ErrCompositeScoreOutOfRange)
	})

	t.Run("sub-score out of range", func(t *testing.T) {
		r := valid()
		r.SubScores.Stability = 104
		assert.ErrorIs(t, r.Validate(), ErrSubScoreOutOfRange)
	})

	t.Run("missing session ID", func(t *testing.T) {
		r := valid()
		r.SessionID = uuid.Nil
		assert.ErrorIs(t, r.Validate(), ErrResultSessionIDEmpty)
	})
}

func TestHashOwnerKey(t *testing.T) {
	h1 := HashOwnerKey("010-1234-5678")
	h2 := HashOwnerKey("010-1234-5678")
	h3 := HashOwnerKey("010-9999-0000")

	assert.Equal(t, h1, h2, "hash must be deterministic for upsert keying")
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
	assert.NotContains(t, h1, "1234", "raw identifier must not leak into the hash")
}
