package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/unit-api/internal/api/shared"
)

// NewRouter builds the HTTP router for the unit session API.
func NewRouter(handler *UnitHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(traceIDMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/units", func(r chi.Router) {
		r.Post("/", handler.Start)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", handler.GetSession)
			r.Post("/answers", handler.SubmitAnswer)
			r.Post("/complete", handler.Complete)
			r.Post("/abandon", handler.Abandon)
			r.Get("/result", handler.GetResult)
		})
	})

	return r
}

// traceIDMiddleware attaches a trace ID to every request context.
func traceIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(shared.SetTraceID(r.Context())))
	})
}
