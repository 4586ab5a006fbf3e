package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/unit-api/internal/content"
	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/ephemeral"
	"github.com/phrazzld/unit-api/internal/events"
	"github.com/phrazzld/unit-api/internal/insight"
	"github.com/phrazzld/unit-api/internal/safety"
	"github.com/phrazzld/unit-api/internal/scoring"
	"github.com/phrazzld/unit-api/internal/store"
)

// HelplineMessage is the fixed crisis resource line returned with every
// safety hold. It is deliberately a constant, never generated text.
const HelplineMessage = "If you are in crisis, you can call or text 988 (Suicide & Crisis Lifeline) anytime, or reach the Crisis Text Line by texting HOME to 741741."

// shareTokenBytes is the entropy of a result share token.
const shareTokenBytes = 12

// StartInput carries everything needed to open a session.
type StartInput struct {
	OwnerKey       string
	DisplayName    string
	BirthYearMonth string
	UnitType       domain.UnitType
}

// StartResult is the response to a successful session start.
type StartResult struct {
	Session  *domain.Session
	Title    string
	Question content.Question
}

// SubmitResult is the response to an accepted or safety-held answer.
type SubmitResult struct {
	Session *domain.Session

	// Progress is the answered fraction of the catalog, 1.0 once the
	// final answer is in.
	Progress float64

	// RiskLevel echoes the session's risk level after this answer.
	RiskLevel domain.RiskLevel

	// NextQuestion is set while more questions remain.
	NextQuestion *content.Question

	// ReadyToComplete is set once the final question has been answered.
	ReadyToComplete bool

	// SafetyHold is set when the answer triggered a RED pause. The answer
	// was not recorded and HelplineMessage carries the crisis resources.
	SafetyHold      bool
	HelplineMessage string
}

// CompleteResult is the response to a successful completion.
type CompleteResult struct {
	Session *domain.Session
	Result  *domain.UnitResult
}

// SessionView pairs a session with its current question for read access.
type SessionView struct {
	Session  *domain.Session
	Title    string
	Question *content.Question
}

// UnitService drives the session lifecycle: start, answer, complete,
// abandon. It owns the privacy contract between the ephemeral answer
// store and the durable result store.
type UnitService interface {
	// Start opens a session for the owner and returns the first question.
	Start(ctx context.Context, input StartInput) (*StartResult, error)

	// SubmitAnswer screens and records one answer, advancing the session.
	SubmitAnswer(ctx context.Context, sessionID uuid.UUID, text string) (*SubmitResult, error)

	// Complete scores the session, generates the insight, persists the
	// derived result and purges the raw answers.
	Complete(ctx context.Context, sessionID uuid.UUID) (*CompleteResult, error)

	// Abandon ends the session at the user's request and purges answers.
	Abandon(ctx context.Context, sessionID uuid.UUID) error

	// GetSession returns the session and its pending question, applying
	// lazy expiry first.
	GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error)

	// GetResult returns the persisted result for a completed session.
	GetResult(ctx context.Context, sessionID uuid.UUID) (*domain.UnitResult, error)
}

// subScoreWeights shape the composite score into the five dimensions,
// per unit type. Values multiply the composite and clamp to [0,100].
var subScoreWeights = map[domain.UnitType]map[string]float64{
	domain.UnitRelationship: {
		"vitality": 0.8, "relationship": 1.2, "growth": 1.0, "resolve": 0.9, "stability": 1.1,
	},
	domain.UnitSelf: {
		"vitality": 1.0, "relationship": 1.1, "growth": 1.2, "resolve": 1.0, "stability": 0.7,
	},
	domain.UnitCareer: {
		"vitality": 0.9, "relationship": 0.8, "growth": 1.2, "resolve": 1.2, "stability": 0.9,
	},
	domain.UnitHealth: {
		"vitality": 1.3, "relationship": 0.7, "growth": 1.0, "resolve": 1.0, "stability": 1.0,
	},
	domain.UnitMoney: {
		"vitality": 0.8, "relationship": 0.7, "growth": 1.0, "resolve": 1.2, "stability": 1.3,
	},
	domain.UnitGrowth: {
		"vitality": 1.0, "relationship": 0.8, "growth": 1.3, "resolve": 1.1, "stability": 0.8,
	},
}

// unitServiceImpl implements the UnitService interface.
type unitServiceImpl struct {
	db           *sql.DB
	profileStore store.ProfileStore
	sessionStore store.SessionStore
	resultStore  store.ResultStore
	answers      ephemeral.AnswerStore
	engine       *scoring.Engine
	catalogs     *content.Loader
	generator    insight.Generator
	fallback     insight.Generator
	emitter      events.Emitter
	logger       *slog.Logger
	modelName    string
	now          func() time.Time
	runTx        func(ctx context.Context, db *sql.DB, fn store.TxFn) error
}

// UnitServiceConfig collects the dependencies of NewUnitService.
type UnitServiceConfig struct {
	DB           *sql.DB
	ProfileStore store.ProfileStore
	SessionStore store.SessionStore
	ResultStore  store.ResultStore
	Answers      ephemeral.AnswerStore
	Engine       *scoring.Engine
	Catalogs     *content.Loader
	Generator    insight.Generator // nil means fallback-only
	Fallback     insight.Generator
	Emitter      events.Emitter
	Logger       *slog.Logger
	ModelName    string
}

// NewUnitService creates the session workflow service.
func NewUnitService(cfg UnitServiceConfig) (UnitService, error) {
	if cfg.ProfileStore == nil || cfg.SessionStore == nil || cfg.ResultStore == nil {
		return nil, errors.New("stores cannot be nil")
	}
	if cfg.Answers == nil {
		return nil, errors.New("answer store cannot be nil")
	}
	if cfg.Engine == nil {
		return nil, errors.New("scoring engine cannot be nil")
	}
	if cfg.Catalogs == nil {
		return nil, errors.New("content loader cannot be nil")
	}
	if cfg.Fallback == nil {
		return nil, errors.New("fallback generator cannot be nil")
	}
	if cfg.Emitter == nil {
		return nil, errors.New("event emitter cannot be nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &unitServiceImpl{
		db:           cfg.DB,
		profileStore: cfg.ProfileStore,
		sessionStore: cfg.SessionStore,
		resultStore:  cfg.ResultStore,
		answers:      cfg.Answers,
		engine:       cfg.Engine,
		catalogs:     cfg.Catalogs,
		generator:    cfg.Generator,
		fallback:     cfg.Fallback,
		emitter:      cfg.Emitter,
		logger:       logger.With("component", "unit_service"),
		modelName:    cfg.ModelName,
		now:          time.Now,
		runTx:        store.RunInTransaction,
	}, nil
}

// Start implements UnitService.Start.
func (s *unitServiceImpl) Start(ctx context.Context, input StartInput) (*StartResult, error) {
	if !input.UnitType.IsValid() {
		return nil, NewServiceError(KindInvalidState, "unknown unit type", domain.ErrInvalidUnitType)
	}
	if strings.TrimSpace(input.OwnerKey) == "" {
		return nil, NewServiceError(KindInvalidState, "owner key is required", nil)
	}

	catalog, err := s.catalogs.Catalog(input.UnitType)
	if err != nil {
		return nil, NewServiceError(KindNotFound, "no question catalog for unit type", err)
	}

	// The raw owner key is hashed before anything touches storage.
	profile, err := domain.NewProfile(domain.HashOwnerKey(input.OwnerKey), input.DisplayName, input.BirthYearMonth)
	if err != nil {
		return nil, NewServiceError(KindInvalidState, "invalid profile data", err)
	}

	stored, err := s.profileStore.Upsert(ctx, profile)
	if err != nil {
		return nil, NewServiceError(KindInternal, "failed to upsert profile", err)
	}

	session, err := domain.NewSession(stored.ID, input.UnitType)
	if err != nil {
		return nil, NewServiceError(KindInternal, "failed to build session", err)
	}
	if err := s.sessionStore.Create(ctx, session); err != nil {
		return nil, NewServiceError(KindInternal, "failed to create session", err)
	}

	s.emit(ctx, session, events.TypeUnitStart, events.StartPayload{UnitType: session.UnitType})

	first, err := catalog.Question(0)
	if err != nil {
		return nil, NewServiceError(KindInternal, "catalog has no first question", err)
	}

	s.logger.InfoContext(ctx, "session started",
		"session_id", session.ID,
		"unit_type", session.UnitType,
		"question_count", catalog.QuestionCount())

	return &StartResult{Session: session, Title: catalog.Title, Question: first}, nil
}

// SubmitAnswer implements UnitService.SubmitAnswer.
func (s *unitServiceImpl) SubmitAnswer(ctx context.Context, sessionID uuid.UUID, text string) (*SubmitResult, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.SessionActive:
	case domain.SessionPaused:
		return nil, NewServiceError(KindBlockedBySafetyHold, "session is paused pending review", nil)
	default:
		return nil, NewServiceError(KindInvalidState,
			fmt.Sprintf("cannot submit to a %s session", session.Status), nil)
	}

	// The length check runs before classification or storage: an oversized
	// answer mutates nothing.
	if len([]rune(text)) > domain.MaxAnswerLength {
		return nil, NewServiceError(KindAnswerTooLong,
			fmt.Sprintf("answer exceeds %d characters", domain.MaxAnswerLength), nil)
	}

	catalog, err := s.catalogs.Catalog(session.UnitType)
	if err != nil {
		return nil, NewServiceError(KindInternal, "failed to load catalog", err)
	}
	question, err := catalog.Question(session.CurrentQuestionIdx)
	if err != nil {
		return nil, NewServiceError(KindInvalidState, "no question pending", err)
	}

	classification := safety.Classify(text)
	if classification.Level == domain.RiskRed {
		return s.safetyHold(ctx, session, question, classification)
	}

	s.answers.Put(session.ID, ephemeral.Answer{
		QuestionIdx: question.Idx,
		QuestionKey: question.Key,
		Text:        text,
	})

	session.RiskLevel = session.RiskLevel.Escalate(classification.Level)
	session.Advance()

	if err := s.sessionStore.UpdateProgress(ctx, session); err != nil {
		if errors.Is(err, store.ErrUpdateFailed) {
			return nil, NewServiceError(KindInvalidState, "answer already recorded for this question", err)
		}
		return nil, NewServiceError(KindInternal, "failed to persist progress", err)
	}

	s.emit(ctx, session, events.TypeAnswerSubmit, events.AnswerSubmitPayload{
		QuestionIdx:  question.Idx,
		QuestionKey:  question.Key,
		AnswerLength: len([]rune(text)),
		RiskLevel:    classification.Level,
	})

	result := &SubmitResult{
		Session:   session,
		Progress:  float64(session.AnswerCount) / float64(catalog.QuestionCount()),
		RiskLevel: session.RiskLevel,
	}
	if session.CurrentQuestionIdx >= catalog.QuestionCount() {
		result.ReadyToComplete = true
	} else {
		next, err := catalog.Question(session.CurrentQuestionIdx)
		if err != nil {
			return nil, NewServiceError(KindInternal, "failed to load next question", err)
		}
		result.NextQuestion = &next
	}

	return result, nil
}

// safetyHold pauses the session after a RED classification. The answer is
// discarded, every held answer is purged, and the response carries the
// fixed helpline message.
func (s *unitServiceImpl) safetyHold(ctx context.Context, session *domain.Session, question content.Question, classification safety.Classification) (*SubmitResult, error) {
	if err := session.TransitionTo(domain.SessionPaused); err != nil {
		return nil, NewServiceError(KindInternal, "failed to pause session", err)
	}
	session.RiskLevel = domain.RiskRed

	if err := s.sessionStore.UpdateStatus(ctx, session.ID, session.Status, session.RiskLevel); err != nil {
		return nil, NewServiceError(KindInternal, "failed to persist safety hold", err)
	}

	s.answers.Purge(session.ID)

	// The event records the category only. The matched text stays out of
	// every durable store.
	s.emit(ctx, session, events.TypeRedDetected, events.RedDetectedPayload{
		QuestionIdx: question.Idx,
		Category:    classification.Category,
		Action:      "paused",
	})

	s.logger.WarnContext(ctx, "session paused by safety hold",
		"session_id", session.ID,
		"category", classification.Category)

	// The held answer was never counted, so progress reflects the answers
	// accepted before the hold.
	return &SubmitResult{
		Session:         session,
		Progress:        float64(session.AnswerCount) / float64(question.Total),
		RiskLevel:       session.RiskLevel,
		SafetyHold:      true,
		HelplineMessage: HelplineMessage,
	}, nil
}

// Complete implements UnitService.Complete.
func (s *unitServiceImpl) Complete(ctx context.Context, sessionID uuid.UUID) (*CompleteResult, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case domain.SessionActive:
	case domain.SessionPaused:
		return nil, NewServiceError(KindBlockedBySafetyHold, "session is paused pending review", nil)
	default:
		return nil, NewServiceError(KindInvalidState,
			fmt.Sprintf("cannot complete a %s session", session.Status), nil)
	}

	answers := s.answers.Get(session.ID)
	if len(answers) == 0 {
		return nil, NewServiceError(KindNoAnswers, "no answers recorded for session", nil)
	}

	// Whatever happens next, the raw answers do not outlive this call.
	defer s.answers.Purge(session.ID)

	profile, err := s.profileStore.GetByID(ctx, session.ProfileID)
	if err != nil {
		return nil, NewServiceError(KindInternal, "failed to load profile", err)
	}

	catalog, err := s.catalogs.Catalog(session.UnitType)
	if err != nil {
		return nil, NewServiceError(KindInternal, "failed to load catalog", err)
	}

	texts := make([]string, len(answers))
	for i, a := range answers {
		texts[i] = a.Text
	}

	score, err := s.engine.Score(scoring.Input{
		Content:           strings.Join(texts, "\n"),
		OwnerKey:          profile.OwnerHash,
		IncludeDailyDelta: true,
	})
	if err != nil {
		if errors.Is(err, scoring.ErrDailyLimitExceeded) {
			return nil, NewServiceError(KindDailyLimitExceeded, "daily scoring limit reached", err)
		}
		return nil, NewServiceError(KindInternal, "scoring failed", err)
	}

	// The result category is the catalog's primary category, not a score
	// artifact.
	category := catalog.PrimaryCategory()
	subScores := deriveSubScores(session.UnitType, score.FinalScore)
	note := s.generateInsight(ctx, session, category, subScores, texts)

	now := s.now().UTC()
	result := &domain.UnitResult{
		ID:              uuid.New(),
		SessionID:       session.ID,
		ProfileID:       session.ProfileID,
		UnitType:        session.UnitType,
		Category:        category,
		CompositeScore:  score.FinalScore,
		SubScores:       subScores,
		EnergyType:      score.EnergyType,
		Encouragement:   note.Encouragement,
		Insight:         note.Insight,
		NextUnitHint:    note.NextUnitHint,
		Keywords:        note.Keywords,
		DurationSeconds: int(now.Sub(session.StartedAt).Seconds()),
		AnswerCount:     session.AnswerCount,
		CreatedAt:       now,
	}

	token, err := newShareToken()
	if err != nil {
		return nil, NewServiceError(KindInternal, "failed to generate share token", err)
	}

	if err := session.TransitionTo(domain.SessionCompleted); err != nil {
		return nil, NewServiceError(KindInvalidState, "session cannot complete", err)
	}
	session.CompletedAt = &now
	session.ShareToken = token

	// Session completion and result creation commit atomically, so there
	// is never a completed session without a result or the reverse.
	err = s.runTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.sessionStore.WithTxSessionStore(tx).MarkCompleted(ctx, session); err != nil {
			return err
		}
		return s.resultStore.WithTxResultStore(tx).Create(ctx, result)
	})
	if err != nil {
		if errors.Is(err, store.ErrResultExists) {
			return nil, NewServiceError(KindInvalidState, "session already has a result", err)
		}
		return nil, NewServiceError(KindInternal, "failed to persist completion", err)
	}

	s.emit(ctx, session, events.TypeUnitComplete, events.CompletePayload{
		DurationSec: result.DurationSeconds,
		AnswerCount: result.AnswerCount,
	})

	s.logger.InfoContext(ctx, "session completed",
		"session_id", session.ID,
		"composite_score", result.CompositeScore,
		"energy_type", result.EnergyType)

	return &CompleteResult{Session: session, Result: result}, nil
}

// generateInsight runs the one-shot model call, falling back to the
// rule-based generator on any failure. Completion never fails because the
// model did.
func (s *unitServiceImpl) generateInsight(ctx context.Context, session *domain.Session, category string, subScores domain.SubScores, texts []string) *insight.Insight {
	req := insight.Request{
		UnitType:  session.UnitType,
		Category:  category,
		SubScores: subScores,
		Answers:   texts,
	}

	if s.generator != nil {
		s.emit(ctx, session, events.TypeAICalled, events.AICalledPayload{
			Model:   s.modelName,
			Purpose: "insight",
		})

		note, err := s.generator.Generate(ctx, req)
		if err == nil {
			return note
		}
		s.logger.WarnContext(ctx, "insight generation failed, using fallback",
			"session_id", session.ID,
			"error", err)
	}

	note, err := s.fallback.Generate(ctx, req)
	if err != nil {
		// The rule-based generator cannot fail, but guard anyway.
		s.logger.ErrorContext(ctx, "fallback insight generation failed", "error", err)
		return &insight.Insight{NextUnitHint: domain.UnitSelf}
	}
	return note
}

// Abandon implements UnitService.Abandon.
func (s *unitServiceImpl) Abandon(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	if err := session.TransitionTo(domain.SessionAbandoned); err != nil {
		return NewServiceError(KindInvalidState,
			fmt.Sprintf("cannot abandon a %s session", session.Status), err)
	}
	if err := s.sessionStore.UpdateStatus(ctx, session.ID, session.Status, session.RiskLevel); err != nil {
		return NewServiceError(KindInternal, "failed to persist abandon", err)
	}

	s.answers.Purge(session.ID)

	s.emit(ctx, session, events.TypeUnitAbandon, events.AbandonPayload{
		LastQuestionIdx: session.CurrentQuestionIdx,
		DurationSec:     int(s.now().UTC().Sub(session.StartedAt).Seconds()),
		AnswerCount:     session.AnswerCount,
	})

	return nil
}

// GetSession implements UnitService.GetSession.
func (s *unitServiceImpl) GetSession(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError(KindNotFound, "session not found", err)
		}
		return nil, NewServiceError(KindInternal, "failed to load session", err)
	}

	if session.IsExpired(s.now().UTC()) {
		s.expire(ctx, session)
	}

	view := &SessionView{Session: session}
	catalog, err := s.catalogs.Catalog(session.UnitType)
	if err != nil {
		return view, nil
	}
	view.Title = catalog.Title
	if session.Status == domain.SessionActive && session.CurrentQuestionIdx < catalog.QuestionCount() {
		q, err := catalog.Question(session.CurrentQuestionIdx)
		if err == nil {
			view.Question = &q
		}
	}
	return view, nil
}

// GetResult implements UnitService.GetResult.
func (s *unitServiceImpl) GetResult(ctx context.Context, sessionID uuid.UUID) (*domain.UnitResult, error) {
	result, err := s.resultStore.GetBySessionID(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError(KindNotFound, "no result for session", err)
		}
		return nil, NewServiceError(KindInternal, "failed to load result", err)
	}
	return result, nil
}

// loadSession fetches a session and applies lazy expiry: an active
// session past its TTL is moved to expired, its answers purged, and the
// caller receives the expired kind.
func (s *unitServiceImpl) loadSession(ctx context.Context, sessionID uuid.UUID) (*domain.Session, error) {
	session, err := s.sessionStore.GetByID(ctx, sessionID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewServiceError(KindNotFound, "session not found", err)
		}
		return nil, NewServiceError(KindInternal, "failed to load session", err)
	}

	if session.IsExpired(s.now().UTC()) {
		s.expire(ctx, session)
		return nil, NewServiceError(KindExpired, "session TTL elapsed", nil)
	}

	return session, nil
}

// expire applies the lazy TTL transition and purges held answers.
func (s *unitServiceImpl) expire(ctx context.Context, session *domain.Session) {
	if err := session.TransitionTo(domain.SessionExpired); err != nil {
		return
	}
	if err := s.sessionStore.UpdateStatus(ctx, session.ID, session.Status, session.RiskLevel); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist expiry",
			"session_id", session.ID,
			"error", err)
	}
	s.answers.Purge(session.ID)
}

// emit records an audit event, logging failures without interrupting the
// primary operation.
func (s *unitServiceImpl) emit(ctx context.Context, session *domain.Session, eventType string, payload any) {
	event, err := domain.NewEvent(session.ID, session.ProfileID, eventType, session.UnitType, payload)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build audit event",
			"event_type", eventType,
			"error", err)
		return
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"event_type", eventType,
			"error", err)
	}
}

// deriveSubScores shapes the composite score into the five dimensions
// using the unit type's weight table.
func deriveSubScores(unitType domain.UnitType, composite int) domain.SubScores {
	weights := subScoreWeights[unitType]
	shape := func(name string) int {
		v := int(math.Round(float64(composite) * weights[name]))
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		return v
	}
	return domain.SubScores{
		Vitality:     shape("vitality"),
		Relationship: shape("relationship"),
		Growth:       shape("growth"),
		Resolve:      shape("resolve"),
		Stability:    shape("stability"),
	}
}

// newShareToken returns a random hex token for read-only result sharing.
func newShareToken() (string, error) {
	b := make([]byte, shareTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
