package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes configures the API router.
func SetupRoutes(h *Handlers) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	// The dashboard is a static site on another origin and sends no
	// credentials, so the permissive origin is fine here.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.Post("/verify-code", h.VerifyCode)

		r.Post("/employees", h.AddEmployee)
		r.Get("/employees/{companyId}", h.ListEmployees)

		r.Post("/send-phishing", h.SendPhishing)
		r.Get("/track-open/{trackingId}", h.TrackOpen)
		r.Post("/track-click", h.TrackClick)

		r.Get("/company-report/{companyId}", h.CompanyReport)
		r.Route("/companies/{companyId}", func(r chi.Router) {
			r.Get("/reports", h.ListReports)
			r.Get("/report", h.DownloadReport)
			r.Post("/report", h.UploadReport)
		})
	})

	return r
}
