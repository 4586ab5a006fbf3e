package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/unit-api/internal/content"
	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/service"
)

// stubUnitService returns canned responses per operation.
type stubUnitService struct {
	startResult    *service.StartResult
	startErr       error
	submitResult   *service.SubmitResult
	submitErr      error
	completeResult *service.CompleteResult
	completeErr    error
	abandonErr     error
	sessionView    *service.SessionView
	sessionErr     error
	result         *domain.UnitResult
	resultErr      error
}

func (s *stubUnitService) Start(context.Context, service.StartInput) (*service.StartResult, error) {
	return s.startResult, s.startErr
}

func (s *stubUnitService) SubmitAnswer(context.Context, uuid.UUID, string) (*service.SubmitResult, error) {
	return s.submitResult, s.submitErr
}

func (s *stubUnitService) Complete(context.Context, uuid.UUID) (*service.CompleteResult, error) {
	return s.completeResult, s.completeErr
}

func (s *stubUnitService) Abandon(context.Context, uuid.UUID) error {
	return s.abandonErr
}

func (s *stubUnitService) GetSession(context.Context, uuid.UUID) (*service.SessionView, error) {
	return s.sessionView, s.sessionErr
}

func (s *stubUnitService) GetResult(context.Context, uuid.UUID) (*domain.UnitResult, error) {
	return s.result, s.resultErr
}

func testSession() *domain.Session {
	return &domain.Session{
		ID:        uuid.New(),
		ProfileID: uuid.New(),
		UnitType:  domain.UnitRelationship,
		Status:    domain.SessionActive,
		RiskLevel: domain.RiskGreen,
		StartedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(domain.SessionTTL),
	}
}

func doRequest(t *testing.T, svc service.UnitService, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	NewRouter(NewUnitHandler(svc)).ServeHTTP(rec, req)
	return rec
}

func TestStartEndpoint(t *testing.T) {
	session := testSession()
	svc := &stubUnitService{
		startResult: &service.StartResult{
			Session: session,
			Title:   "Relationship Check-in",
			Question: content.Question{
				Key: "q_one", Text: "First question?", InputType: "text", Total: 7,
			},
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/units", StartUnitRequest{
		OwnerKey: "owner-key",
		UnitType: "REL",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp StartUnitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, session.ID, resp.Session.ID)
	assert.Equal(t, "q_one", resp.Question.Key)
	assert.Equal(t, "Relationship Check-in", resp.Title)
}

func TestStartEndpointValidation(t *testing.T) {
	tests := []struct {
		name string
		body StartUnitRequest
	}{
		{"missing owner key", StartUnitRequest{UnitType: "REL"}},
		{"unknown unit type", StartUnitRequest{OwnerKey: "owner", UnitType: "PETS"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, &stubUnitService{}, http.MethodPost, "/units", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	session := testSession()
	next := content.Question{Key: "q_two", Text: "Second?", InputType: "text", Total: 7, Idx: 1}
	svc := &stubUnitService{
		submitResult: &service.SubmitResult{
			Session:      session,
			Progress:     1.0 / 7,
			RiskLevel:    domain.RiskGreen,
			NextQuestion: &next,
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/units/"+session.ID.String()+"/answers",
		SubmitAnswerRequest{Text: "my answer"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SubmitAnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.NextQuestion)
	assert.Equal(t, "q_two", resp.NextQuestion.Key)
	assert.InDelta(t, 1.0/7, resp.Progress, 1e-9)
	assert.Equal(t, "GREEN", resp.RiskLevel)
	assert.False(t, resp.SafetyHold)
}

func TestSubmitAnswerSafetyHold(t *testing.T) {
	session := testSession()
	session.Status = domain.SessionPaused
	svc := &stubUnitService{
		submitResult: &service.SubmitResult{
			Session:         session,
			SafetyHold:      true,
			HelplineMessage: service.HelplineMessage,
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/units/"+session.ID.String()+"/answers",
		SubmitAnswerRequest{Text: "some answer"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SubmitAnswerResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.SafetyHold)
	assert.Equal(t, service.HelplineMessage, resp.HelplineMessage)
}

func TestSubmitAnswerInvalidSessionID(t *testing.T) {
	rec := doRequest(t, &stubUnitService{}, http.MethodPost, "/units/not-a-uuid/answers",
		SubmitAnswerRequest{Text: "answer"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorKindStatusMapping(t *testing.T) {
	tests := []struct {
		kind       service.ErrorKind
		wantStatus int
	}{
		{service.KindNotFound, http.StatusNotFound},
		{service.KindExpired, http.StatusGone},
		{service.KindBlockedBySafetyHold, http.StatusConflict},
		{service.KindInvalidState, http.StatusBadRequest},
		{service.KindAnswerTooLong, http.StatusBadRequest},
		{service.KindNoAnswers, http.StatusBadRequest},
		{service.KindDailyLimitExceeded, http.StatusTooManyRequests},
		{service.KindInternal, http.StatusInternalServerError},
	}

	sessionID := uuid.New()
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			svc := &stubUnitService{
				submitErr: service.NewServiceError(tt.kind, "boom", nil),
			}
			rec := doRequest(t, svc, http.MethodPost, "/units/"+sessionID.String()+"/answers",
				SubmitAnswerRequest{Text: "answer"})
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.kind), resp["kind"])
		})
	}
}

func TestCompleteEndpoint(t *testing.T) {
	session := testSession()
	session.Status = domain.SessionCompleted
	session.ShareToken = "abc123def456abc123def456"
	svc := &stubUnitService{
		completeResult: &service.CompleteResult{
			Session: session,
			Result: &domain.UnitResult{
				ID:             uuid.New(),
				SessionID:      session.ID,
				ProfileID:      session.ProfileID,
				UnitType:       session.UnitType,
				CompositeScore: 78,
				SubScores:      domain.SubScores{Vitality: 62, Relationship: 94, Growth: 78, Resolve: 70, Stability: 86},
				EnergyType:     "emerald",
				Encouragement:  "Well done.",
				NextUnitHint:   domain.UnitSelf,
				Keywords:       []string{"family", "trust"},
			},
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/units/"+session.ID.String()+"/complete", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp CompleteUnitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 78, resp.Result.CompositeScore)
	assert.Equal(t, "emerald", resp.Result.EnergyType)
	assert.Equal(t, session.ShareToken, resp.ShareToken)
}

func TestAbandonEndpoint(t *testing.T) {
	sessionID := uuid.New()
	rec := doRequest(t, &stubUnitService{}, http.MethodPost, "/units/"+sessionID.String()+"/abandon", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGetSessionEndpoint(t *testing.T) {
	session := testSession()
	q := content.Question{Key: "q_one", Text: "First?", InputType: "text", Total: 7}
	svc := &stubUnitService{
		sessionView: &service.SessionView{Session: session, Title: "Check-in", Question: &q},
	}

	rec := doRequest(t, svc, http.MethodGet, "/units/"+session.ID.String()+"/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SessionViewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, session.ID, resp.Session.ID)
	require.NotNil(t, resp.Question)
	assert.Equal(t, "q_one", resp.Question.Key)
}

func TestGetResultEndpoint(t *testing.T) {
	sessionID := uuid.New()
	svc := &stubUnitService{
		result: &domain.UnitResult{
			SessionID:      sessionID,
			UnitType:       domain.UnitSelf,
			CompositeScore: 66,
			EnergyType:     "citrine",
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/units/"+sessionID.String()+"/result", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ResultResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 66, resp.CompositeScore)
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, &stubUnitService{}, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
