package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures all API routes.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// The review UI runs on a separate origin in development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(api chi.Router) {
		api.Post("/guard/check", h.CheckDraft)
		api.Get("/guard/status", h.GuardStatus)

		api.Post("/rejections", h.RecordRejection)
		api.Get("/rejections/{email}", h.GetRejectionHistory)
		api.Get("/rejections/{email}/context", h.GetRejectionContext)

		api.Post("/templates/select", h.SelectTemplate)
	})

	return r
}
