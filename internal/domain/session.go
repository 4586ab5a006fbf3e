package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Session-specific validation errors
var (
	// ErrSessionIDEmpty is returned when a session ID is empty or nil.
	ErrSessionIDEmpty = errors.New("session ID cannot be empty")

	// ErrSessionProfileIDEmpty is returned when a session's profile ID is empty or nil.
	ErrSessionProfileIDEmpty = errors.New("session profile ID cannot be empty")

	// ErrSessionExpiryMissing is returned when a session has no expiry timestamp.
	ErrSessionExpiryMissing = errors.New("session expiry cannot be zero")
)

// SessionStatus represents a session's position in the lifecycle state machine.
type SessionStatus string

// Session lifecycle states. Active sessions may pause (safety hold),
// complete, be abandoned, or expire. Paused sessions may resume or be
// abandoned after review. All other states are terminal.
const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
	SessionExpired   SessionStatus = "expired"
)

// sessionTransitions encodes the permitted lifecycle edges.
var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionActive: {SessionPaused, SessionCompleted, SessionAbandoned, SessionExpired},
	SessionPaused: {SessionActive, SessionAbandoned},
}

// SessionTTL is how long a session stays usable after it starts.
// Past this, submit and complete both reject; there is no resume.
const SessionTTL = 30 * time.Minute

// MaxAnswerLength is the longest accepted free-text answer, in characters.
const MaxAnswerLength = 1000

// UnitType identifies a fixed question sequence assessing one life domain.
type UnitType string

// Known unit types. The set also bounds the "next unit" hint values the
// insight generator may return.
const (
	UnitRelationship UnitType = "REL"
	UnitSelf         UnitType = "SELF"
	UnitCareer       UnitType = "CAREER"
	UnitHealth       UnitType = "HEALTH"
	UnitMoney        UnitType = "MONEY"
	UnitGrowth       UnitType = "GROWTH"
)

// IsValid reports whether the unit type is one of the defined codes.
func (u UnitType) IsValid() bool {
	switch u {
	case UnitRelationship, UnitSelf, UnitCareer, UnitHealth, UnitMoney, UnitGrowth:
		return true
	}
	return false
}

// IsValid reports whether the status is one of the defined states.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionActive, SessionPaused, SessionCompleted, SessionAbandoned, SessionExpired:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s SessionStatus) IsTerminal() bool {
	switch s {
	case SessionCompleted, SessionAbandoned, SessionExpired:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle state machine allows
// moving from this status to the target status.
func (s SessionStatus) CanTransitionTo(target SessionStatus) bool {
	for _, allowed := range sessionTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Session is the persistent record of one user's run through a unit.
// The database row is the system of record; raw answer text never
// appears here or anywhere else durable.
type Session struct {
	ID                 uuid.UUID     `json:"id"`
	ProfileID          uuid.UUID     `json:"profile_id"`
	UnitType           UnitType      `json:"unit_type"`
	Status             SessionStatus `json:"status"`
	CurrentQuestionIdx int           `json:"current_question_idx"`
	AnswerCount        int           `json:"answer_count"`
	RiskLevel          RiskLevel     `json:"risk_level"`
	StartedAt          time.Time     `json:"started_at"`
	ExpiresAt          time.Time     `json:"expires_at"`
	CompletedAt        *time.Time    `json:"completed_at,omitempty"`
	ShareToken         string        `json:"share_token,omitempty"`
}

// NewSession creates an active session for the given profile and unit type.
// It generates a new UUID and sets the 30-minute expiry window.
// Returns an error if validation fails.
func NewSession(profileID uuid.UUID, unitType UnitType) (*Session, error) {
	now := time.Now().UTC()
	session := &Session{
		ID:                 uuid.New(),
		ProfileID:          profileID,
		UnitType:           unitType,
		Status:             SessionActive,
		CurrentQuestionIdx: 0,
		AnswerCount:        0,
		RiskLevel:          RiskGreen,
		StartedAt:          now,
		ExpiresAt:          now.Add(SessionTTL),
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the Session has valid data.
// Returns an error if any field fails validation.
func (s *Session) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSessionIDEmpty
	}

	if s.ProfileID == uuid.Nil {
		return ErrSessionProfileIDEmpty
	}

	if !s.UnitType.IsValid() {
		return ErrInvalidUnitType
	}

	if !s.Status.IsValid() {
		return ErrInvalidSessionStatus
	}

	if !s.RiskLevel.IsValid() {
		return ErrInvalidRiskLevel
	}

	if s.CurrentQuestionIdx < 0 {
		return ErrQuestionIndexRegression
	}

	if s.ExpiresAt.IsZero() {
		return ErrSessionExpiryMissing
	}

	return nil
}

// IsExpired reports whether the session's TTL has elapsed at the given time.
// Expiry only applies to active sessions; terminal states keep their status.
func (s *Session) IsExpired(now time.Time) bool {
	return s.Status == SessionActive && now.After(s.ExpiresAt)
}

// TransitionTo moves the session to the target status, enforcing the
// lifecycle state machine. Terminal states reject all transitions.
func (s *Session) TransitionTo(target SessionStatus) error {
	if !target.IsValid() {
		return ErrInvalidSessionStatus
	}
	if !s.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	s.Status = target
	return nil
}

// Advance records one accepted answer: the question index moves forward by
// one and the answer count increments. The index never moves backwards.
func (s *Session) Advance() {
	s.CurrentQuestionIdx++
	s.AnswerCount++
}
