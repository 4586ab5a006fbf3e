package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/unit-api/internal/api/shared"
	"github.com/phrazzld/unit-api/internal/domain"
	"github.com/phrazzld/unit-api/internal/service"
)

// UnitHandler handles the unit session endpoints.
type UnitHandler struct {
	units     service.UnitService
	validator *validator.Validate
}

// NewUnitHandler creates a new UnitHandler with the given service.
func NewUnitHandler(units service.UnitService) *UnitHandler {
	return &UnitHandler{
		units:     units,
		validator: validator.New(),
	}
}

// Start handles POST /units.
func (h *UnitHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartUnitRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	out, err := h.units.Start(r.Context(), service.StartInput{
		OwnerKey:       req.OwnerKey,
		DisplayName:    req.DisplayName,
		BirthYearMonth: req.BirthYearMonth,
		UnitType:       domain.UnitType(req.UnitType),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, StartUnitResponse{
		Session:  toSessionResponse(out.Session),
		Title:    out.Title,
		Question: toQuestionResponse(out.Question),
	})
}

// SubmitAnswer handles POST /units/{sessionID}/answers.
func (h *UnitHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	out, err := h.units.SubmitAnswer(r.Context(), sessionID, req.Text)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := SubmitAnswerResponse{
		Session:         toSessionResponse(out.Session),
		Progress:        out.Progress,
		RiskLevel:       string(out.RiskLevel),
		ReadyToComplete: out.ReadyToComplete,
		SafetyHold:      out.SafetyHold,
		HelplineMessage: out.HelplineMessage,
	}
	if out.NextQuestion != nil {
		q := toQuestionResponse(*out.NextQuestion)
		resp.NextQuestion = &q
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Complete handles POST /units/{sessionID}/complete.
func (h *UnitHandler) Complete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	out, err := h.units.Complete(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CompleteUnitResponse{
		Session:    toSessionResponse(out.Session),
		Result:     toResultResponse(out.Result),
		ShareToken: out.Session.ShareToken,
	})
}

// Abandon handles POST /units/{sessionID}/abandon.
func (h *UnitHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.units.Abandon(r.Context(), sessionID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetSession handles GET /units/{sessionID}.
func (h *UnitHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.units.GetSession(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := SessionViewResponse{
		Session: toSessionResponse(view.Session),
		Title:   view.Title,
	}
	if view.Question != nil {
		q := toQuestionResponse(*view.Question)
		resp.Question = &q
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetResult handles GET /units/{sessionID}/result.
func (h *UnitHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	result, err := h.units.GetResult(r.Context(), sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toResultResponse(result))
}

// sessionID parses the session ID path parameter, writing a 400 response
// on failure.
func (h *UnitHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "sessionID")
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}
