package routes

import (
	"buddhist-lent/pledgeboard/internal/api"
	"buddhist-lent/pledgeboard/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterAPIRoutes registers all API v1 routes and handlers
func RegisterAPIRoutes(r chi.Router, handlers *api.Handlers, deps *api.Dependencies) {
	limiter := middleware.NewRateLimiter(float64(deps.Config.AuthRatePerSecond), deps.Config.AuthRateBurst)
	authenticated := middleware.AuthMiddleware(deps.Services.Auth, deps.Config.CookieName, deps.Config.IsProduction())

	r.Route("/api/v1", func(v1 chi.Router) {
		// Public
		v1.Route("/auth", func(a chi.Router) {
			a.Use(limiter.Middleware)
			a.Post("/signup", handlers.Signup())
			a.Post("/login", handlers.Login())
			a.Post("/forgot-password", handlers.ForgotPassword())
			a.Post("/reset-password", handlers.ResetPassword())
			a.With(authenticated).Post("/logout", handlers.Logout())
		})
		v1.Post("/participants", handlers.CreateParticipant())
		v1.Post("/form-returns", handlers.CreateFormReturn())
		v1.Get("/groups", handlers.ListGroups())
		v1.Get("/groups/{id}", handlers.GetGroup())

		v1.Group(func(member chi.Router) {
			member.Use(authenticated)
			member.Use(middleware.IsMemberMiddleware())

			member.Get("/me", handlers.Me())
			member.Put("/me/image", handlers.UpdateMyImage())

			member.Get("/participants", handlers.ListParticipants())
			member.Get("/participants/export", handlers.ExportParticipants())
			member.Get("/participants/{id}", handlers.GetParticipant())

			member.Get("/form-returns", handlers.ListFormReturns())
			member.Get("/form-returns/export", handlers.ExportFormReturns())
			member.Get("/form-returns/{id}", handlers.GetFormReturn())

			member.Get("/dashboard/participants", handlers.ParticipantDashboard())
			member.Get("/dashboard/form-returns", handlers.FormReturnDashboard())
			member.Get("/dashboard/summary", handlers.DashboardSummary())

			member.Group(func(admin chi.Router) {
				admin.Use(middleware.IsAdminMiddleware())

				admin.Get("/users", handlers.ListUsers())
				admin.Patch("/users/{id}/role", handlers.SetUserRole())
				admin.Delete("/users/{id}", handlers.DeleteUser())

				admin.Put("/participants/{id}", handlers.UpdateParticipant())
				admin.Patch("/participants/{id}", handlers.PatchParticipant())
				admin.Delete("/participants/{id}", handlers.DeleteParticipant())

				admin.Put("/form-returns/{id}", handlers.UpdateFormReturn())
				admin.Delete("/form-returns/{id}", handlers.DeleteFormReturn())

				admin.Get("/groups/export", handlers.ExportGroups())
				admin.Post("/groups", handlers.CreateGroup())
				admin.Put("/groups/{id}", handlers.UpdateGroup())
				admin.Delete("/groups/{id}", handlers.DeleteGroup())

				// Background jobs management
				admin.Post("/admin/jobs/sweep-orphans", handlers.TriggerOrphanSweep())
				admin.Get("/admin/jobs/status", handlers.GetJobStatus())
			})
		})
	})
}
