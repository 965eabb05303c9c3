package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notesqa/internal/handlers"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Ask       http.Handler
	History   http.Handler
	Documents *handlers.DocumentsHandler
	Health    http.Handler
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(LoggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(CORS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", deps.Ask)
		r.Method(http.MethodGet, "/history", deps.History)
		r.Get("/documents", deps.Documents.List)
		r.Delete("/documents/{id}", deps.Documents.Delete)
		r.Method(http.MethodGet, "/health", deps.Health)
	})

	return r
}
