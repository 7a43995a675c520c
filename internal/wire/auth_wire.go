package wire

import (
	"reader-hub/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/send-otp", authHandler.SendOTP)
		r.Post("/verify-otp", authHandler.VerifyOTP)
		r.Post("/request-reset-password", authHandler.RequestPasswordReset)
		r.Post("/verify-reset-otp", authHandler.VerifyResetOTP)
		r.Post("/reset-password", authHandler.ResetPassword)
	})
}
