package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/unit-api/internal/api/shared"
	"github.com/phrazzld/unit-api/internal/service"
)

// kindStatus maps service error kinds to HTTP status codes. Handlers
// never inspect error strings.
var kindStatus = map[service.ErrorKind]int{
	service.KindNotFound:            http.StatusNotFound,
	service.KindExpired:             http.StatusGone,
	service.KindBlockedBySafetyHold: http.StatusConflict,
	service.KindInvalidState:        http.StatusBadRequest,
	service.KindAnswerTooLong:       http.StatusBadRequest,
	service.KindNoAnswers:           http.StatusBadRequest,
	service.KindDailyLimitExceeded:  http.StatusTooManyRequests,
	service.KindInternal:            http.StatusInternalServerError,
}

// kindMessage is the client-safe message per kind. Raw error details stay
// in the logs.
var kindMessage = map[service.ErrorKind]string{
	service.KindNotFound:            "Session not found",
	service.KindExpired:             "Session has expired",
	service.KindBlockedBySafetyHold: "Session is paused",
	service.KindInvalidState:        "Operation not allowed in current session state",
	service.KindAnswerTooLong:       "Answer is too long",
	service.KindNoAnswers:           "No answers to complete with",
	service.KindDailyLimitExceeded:  "Daily limit reached, please try again tomorrow",
	service.KindInternal:            "Internal server error",
}

// handleServiceError translates a service error into an HTTP response,
// logging internal failures with the trace ID.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)

	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"error", err,
			"path", r.URL.Path,
			"trace_id", shared.GetTraceID(r.Context()))
	}

	shared.RespondWithKindedError(w, r, status, string(kind), kindMessage[kind])
}
