// Package api implements the HTTP surface of the unit session engine.
package api

import (
	"github.com/google/uuid"

	"github.com/phrazzld/unit-api/internal/content"
	"github.com/phrazzld/unit-api/internal/domain"
)

// StartUnitRequest is the payload for POST /units.
type StartUnitRequest struct {
	OwnerKey       string `json:"owner_key" validate:"required,min=3,max=128"`
	DisplayName    string `json:"display_name" validate:"omitempty,max=64"`
	BirthYearMonth string `json:"birth_year_month" validate:"omitempty,len=7"`
	UnitType       string `json:"unit_type" validate:"required,oneof=REL SELF CAREER HEALTH MONEY GROWTH"`
}

// SubmitAnswerRequest is the payload for POST /units/{id}/answers.
// The length cap is enforced again by the service; the validate tag just
// rejects absurd payloads early.
type SubmitAnswerRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// QuestionResponse is one question rendered for the client.
type QuestionResponse struct {
	Idx       int    `json:"idx"`
	Key       string `json:"key"`
	Text      string `json:"text"`
	Guide     string `json:"guide,omitempty"`
	InputType string `json:"input_type"`
	Total     int    `json:"total"`
}

// SessionResponse is the session state rendered for the client.
type SessionResponse struct {
	ID                 uuid.UUID `json:"id"`
	UnitType           string    `json:"unit_type"`
	Status             string    `json:"status"`
	CurrentQuestionIdx int       `json:"current_question_idx"`
	AnswerCount        int       `json:"answer_count"`
	ExpiresAt          string    `json:"expires_at"`
}

// StartUnitResponse is the response to a successful start.
type StartUnitResponse struct {
	Session  SessionResponse  `json:"session"`
	Title    string           `json:"title"`
	Question QuestionResponse `json:"question"`
}

// SubmitAnswerResponse is the response to a submitted answer.
type SubmitAnswerResponse struct {
	Session         SessionResponse   `json:"session"`
	Progress        float64           `json:"progress"`
	RiskLevel       string            `json:"risk_level"`
	NextQuestion    *QuestionResponse `json:"next_question,omitempty"`
	ReadyToComplete bool              `json:"ready_to_complete"`
	SafetyHold      bool              `json:"safety_hold,omitempty"`
	HelplineMessage string            `json:"helpline_message,omitempty"`
}

// ResultResponse is a completed unit's derived result.
type ResultResponse struct {
	SessionID       uuid.UUID        `json:"session_id"`
	UnitType        string           `json:"unit_type"`
	Category        string           `json:"category"`
	CompositeScore  int              `json:"composite_score"`
	SubScores       domain.SubScores `json:"sub_scores"`
	EnergyType      string           `json:"energy_type"`
	Encouragement   string           `json:"encouragement"`
	Insight         string           `json:"insight"`
	NextUnitHint    string           `json:"next_unit_hint"`
	Keywords        []string         `json:"keywords"`
	DurationSeconds int              `json:"duration_seconds"`
	AnswerCount     int              `json:"answer_count"`
}

// CompleteUnitResponse pairs the final session state with the result.
type CompleteUnitResponse struct {
	Session    SessionResponse `json:"session"`
	Result     ResultResponse  `json:"result"`
	ShareToken string          `json:"share_token"`
}

// SessionViewResponse is the response for session reads.
type SessionViewResponse struct {
	Session  SessionResponse   `json:"session"`
	Title    string            `json:"title,omitempty"`
	Question *QuestionResponse `json:"question,omitempty"`
}

func toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		ID:                 s.ID,
		UnitType:           string(s.UnitType),
		Status:             string(s.Status),
		CurrentQuestionIdx: s.CurrentQuestionIdx,
		AnswerCount:        s.AnswerCount,
		ExpiresAt:          s.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toQuestionResponse(q content.Question) QuestionResponse {
	return QuestionResponse{
		Idx:       q.Idx,
		Key:       q.Key,
		Text:      q.Text,
		Guide:     q.Guide,
		InputType: q.InputType,
		Total:     q.Total,
	}
}

func toResultResponse(r *domain.UnitResult) ResultResponse {
	return ResultResponse{
		SessionID:       r.SessionID,
		UnitType:        string(r.UnitType),
		Category:        r.Category,
		CompositeScore:  r.CompositeScore,
		SubScores:       r.SubScores,
		EnergyType:      r.EnergyType,
		Encouragement:   r.Encouragement,
		Insight:         r.Insight,
		NextUnitHint:    string(r.NextUnitHint),
		Keywords:        r.Keywords,
		DurationSeconds: r.DurationSeconds,
		AnswerCount:     r.AnswerCount,
	}
}
