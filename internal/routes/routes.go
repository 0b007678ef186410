package routes

import (
	"gatehouse/internal/auth"
	"gatehouse/internal/handlers"
	"gatehouse/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes wires all application routes onto the router.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	securityHandler *handlers.SecurityHandler,
	twoFactorHandler *handlers.TwoFactorHandler,
	tokenManager *auth.TokenManager,
	adminEmail string,
) {
	authRateLimit := middleware.DefaultAuthRateLimit()

	// Public routes. The in-memory IP cap here is the outer guard; the
	// database-backed limiter inside the services does the real accounting.
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(authRateLimit))
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/verify-email", authHandler.VerifyEmail)
		r.Post("/auth/resend-verification", authHandler.ResendVerification)
	})

	// Authenticated routes.
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager))

		r.Get("/users/me", userHandler.GetMe)
		r.Put("/users/me", userHandler.UpdateMe)
		r.Delete("/users/me", userHandler.DeleteMe)

		r.Post("/users/me/2fa/setup", twoFactorHandler.Setup)
		r.Post("/users/me/2fa/enable", twoFactorHandler.Enable)
		r.Post("/users/me/2fa/disable", twoFactorHandler.Disable)

		// Admin surface.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(adminEmail))
			r.Get("/admin/users", userHandler.ListUsers)
			r.Get("/admin/security/stats", securityHandler.Stats)
			r.Get("/admin/security/failed-attempts", securityHandler.FailedAttempts)
			r.Post("/admin/security/cleanup", securityHandler.Cleanup)
		})
	})
}
