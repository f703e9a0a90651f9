package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tradeledger/superadmin/internal/auth"
	"github.com/tradeledger/superadmin/internal/handlers"
	"github.com/tradeledger/superadmin/internal/middleware"
	pkghttp "github.com/tradeledger/superadmin/pkg/http"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	adminDataHandler *handlers.AdminDataHandler,
	auditHandler *handlers.AuditHandler,
	sessions auth.SessionOpener,
	verifyRecorder auth.VerifyFailureRecorder,
	clientIP func(r *http.Request) string,
	healthCheck http.HandlerFunc,
) {
	rateLimitConfig := middleware.DefaultLoginRateLimit()

	// Public routes - no session required
	router.Get("/health", healthCheck)
	router.With(middleware.RateLimitByIP(rateLimitConfig, clientIP)).Post("/login", authHandler.Login)
	router.Post("/verify", authHandler.Verify)
	router.Post("/logout", authHandler.Logout)

	// Protected routes - verified session required before any store
	// access
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessions, verifyRecorder, clientIP))

		r.Get("/admin-data", adminDataHandler.List)
		r.Post("/admin-data", adminDataHandler.Create)
		r.Put("/admin-data", adminDataHandler.Update)
		r.Delete("/admin-data", adminDataHandler.Delete)

		r.Get("/audit-logs", auditHandler.List)
	})
}

// HealthHandler builds the health endpoint from a ping function.
func HealthHandler(ping func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ping(); err != nil {
			pkghttp.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
		pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
