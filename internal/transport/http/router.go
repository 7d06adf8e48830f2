package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the public endpoints. Pass nil for pieces a binary does not
// carry (the ingestor-less server has no dead letters, and vice versa); their
// routes are simply not mounted.
func NewRouter(audits *AuditHandler, expenses *ExpenseHandler, deadLetters *DeadLetterHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if audits != nil {
			r.Route("/audit", func(r chi.Router) {
				r.Get("/entities/{entityID}", audits.ByEntity)
				r.Get("/entities/{entityID}/actions/{action}", audits.ByEntityAndAction)
				r.Get("/users/{userID}", audits.ByUser)
				r.Get("/window", audits.ByWindow)
				r.Get("/recent", audits.Recent)
				r.Get("/actions/{action}", audits.ByAction)
			})
		}

		if expenses != nil {
			r.Route("/expenses", func(r chi.Router) {
				r.Post("/", expenses.Create)
				r.Get("/{id}", expenses.Get)
				r.Put("/{id}", expenses.Update)
				r.Delete("/{id}", expenses.Delete)
			})
		}

		if deadLetters != nil {
			r.Get("/dead-letters", deadLetters.List)
		}
	})

	return r
}
