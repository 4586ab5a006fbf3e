package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Result-specific validation errors
var (
	// ErrResultIDEmpty is returned when a result ID is empty or nil.
	ErrResultIDEmpty = errors.New("result ID cannot be empty")

	// ErrResultSessionIDEmpty is returned when a result's session ID is empty or nil.
	ErrResultSessionIDEmpty = errors.New("result session ID cannot be empty")

	// ErrResultProfileIDEmpty is returned when a result's profile ID is empty or nil.
	ErrResultProfileIDEmpty = errors.New("result profile ID cannot be empty")

	// ErrCompositeScoreOutOfRange is returned when a composite score falls
	// outside the engine's [50,100] range.
	ErrCompositeScoreOutOfRange = errors.New("composite score must be between 50 and 100")

	// ErrSubScoreOutOfRange is returned when any sub-score falls outside [0,100].
	ErrSubScoreOutOfRange = errors.New("sub-scores must be between 0 and 100")
)

// SubScores holds the five derived dimensions of a completed unit.
// Each value is a pure function of the composite score and the unit type.
type SubScores struct {
	Vitality     int `json:"vitality"`
	Relationship int `json:"relationship"`
	Growth       int `json:"growth"`
	Resolve      int `json:"resolve"`
	Stability    int `json:"stability"`
}

// inRange reports whether every dimension is within [0,100].
func (s SubScores) inRange() bool {
	for _, v := range []int{s.Vitality, s.Relationship, s.Growth, s.Resolve, s.Stability} {
		if v < 0 || v > 100 {
			return false
		}
	}
	return true
}

// UnitResult is the durable outcome of a completed session. Every field is
// derived or filtered; by construction there is nowhere to put raw answer
// text, which is how the persistence privacy contract is enforced.
type UnitResult struct {
	ID              uuid.UUID `json:"id"`
	SessionID       uuid.UUID `json:"session_id"`
	ProfileID       uuid.UUID `json:"profile_id"`
	UnitType        UnitType  `json:"unit_type"`
	Category        string    `json:"category"`
	CompositeScore  int       `json:"composite_score"`
	SubScores       SubScores `json:"sub_scores"`
	EnergyType      string    `json:"energy_type"`
	Encouragement   string    `json:"encouragement"`
	Insight         string    `json:"insight"`
	NextUnitHint    UnitType  `json:"next_unit_hint"`
	Keywords        []string  `json:"keywords"`
	DurationSeconds int       `json:"duration_seconds"`
	AnswerCount     int       `json:"answer_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewUnitResult creates a result record for a completed session.
// Returns an error if validation fails.
func NewUnitResult(sessionID, profileID uuid.UUID, unitType UnitType) (*UnitResult, error) {
	result := &UnitResult{
		ID:             uuid.New(),
		SessionID:      sessionID,
		ProfileID:      profileID,
		UnitType:       unitType,
		CompositeScore: 50,
		CreatedAt:      time.Now().UTC(),
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return result, nil
}

// Validate checks if the UnitResult has valid data.
func (r *UnitResult) Validate() error {
	if r.ID == uuid.Nil {
		return ErrResultIDEmpty
	}

	if r.SessionID == uuid.Nil {
		return ErrResultSessionIDEmpty
	}

	if r.ProfileID == uuid.Nil {
		return ErrResultProfileIDEmpty
	}

	if !r.UnitType.IsValid() {
		return ErrInvalidUnitType
	}

	if r.CompositeScore < 50 || r.CompositeScore > 100 {
		return ErrCompositeScoreOutOfRange
	}

	if !r.SubScores.inRange() {
		return ErrSubScoreOutOfRange
	}

	return nil
}
