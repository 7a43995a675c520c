package wire

import (
	"net/http"

	"reader-hub/internal/adaptor"
	"reader-hub/internal/data/entity"
	"reader-hub/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireUser configures profile and admin user management routes
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	// ==================== PROTECTED USER ROUTES ====================
	r.With(auth).Get("/api/users/profile", userHandler.GetProfile)

	// ==================== ADMIN ROUTES ====================
	r.With(
		auth,
		middleware.RequireRole(log, string(entity.RoleAdmin)),
	).Route("/api/admin/users", func(r chi.Router) {
		r.Get("/", userHandler.GetAllUsers)                        // GET /api/admin/users?page=1&limit=10&role=author
		r.Patch("/{id}/status", userHandler.UpdatePublisherStatus) // PATCH /api/admin/users/{id}/status
	})
}
