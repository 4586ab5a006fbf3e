// Package events defines the audit event vocabulary for unit sessions and
// the emitter that persists events to the append-only log.
package events

import (
	"context"

	"github.com/phrazzld/unit-api/internal/domain"
)

// Audit event types recorded over a session's lifetime.
const (
	// TypeUnitStart marks session creation.
	TypeUnitStart = "UNIT_START"

	// TypeAnswerSubmit marks one accepted answer. Its metadata carries the
	// question key, answer length and risk level — never the answer text.
	TypeAnswerSubmit = "ANSWER_SUBMIT"

	// TypeRedDetected marks a safety pause. Metadata carries the risk
	// category only, not the matched text.
	TypeRedDetected = "RED_DETECTED"

	// TypeAICalled marks the single external generation call of a completion.
	TypeAICalled = "AI_CALLED"

	// TypeUnitComplete marks successful completion.
	TypeUnitComplete = "UNIT_COMPLETE"

	// TypeUnitAbandon marks a user-initiated abandon.
	TypeUnitAbandon = "UNIT_ABANDON"
)

// StartPayload is the metadata for TypeUnitStart.
type StartPayload struct {
	UnitType domain.UnitType `json:"unit_type"`
}

// AnswerSubmitPayload is the metadata for TypeAnswerSubmit.
type AnswerSubmitPayload struct {
	QuestionIdx  int              `json:"question_idx"`
	QuestionKey  string           `json:"question_key"`
	AnswerLength int              `json:"answer_length"`
	RiskLevel    domain.RiskLevel `json:"risk_level"`
}

// RedDetectedPayload is the metadata for TypeRedDetected.
type RedDetectedPayload struct {
	QuestionIdx int    `json:"question_idx"`
	Category    string `json:"category"`
	Action      string `json:"action"`
}

// AICalledPayload is the metadata for TypeAICalled.
type AICalledPayload struct {
	Model   string `json:"model"`
	Purpose string `json:"purpose"`
}

// CompletePayload is the metadata for TypeUnitComplete.
type CompletePayload struct {
	DurationSec int `json:"duration_sec"`
	AnswerCount int `json:"answer_count"`
}

// AbandonPayload is the metadata for TypeUnitAbandon.
type AbandonPayload struct {
	LastQuestionIdx int `json:"last_question_idx"`
	DurationSec     int `json:"duration_sec"`
	AnswerCount     int `json:"answer_count"`
}

// Emitter publishes audit events. Emission is a secondary concern:
// callers log a returned error and continue with the primary transition.
type Emitter interface {
	// Emit records the given event.
	Emit(ctx context.Context, event *domain.Event) error
}
