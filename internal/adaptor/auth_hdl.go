package adaptor

import (
	"net/http"

	"reader-hub/internal/dto/request"
	"reader-hub/internal/usecase"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "register")
		return
	}

	utils.ResponseCreated(w, localize(r).T("USER_REGISTERED"), user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("LOGIN_SUCCESS"), token)
}

// SendOTP handles POST /api/auth/send-otp
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req request.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.IssueOTP(r.Context(), req.Email); err != nil {
		handleServiceError(w, r, h.log, err, "send otp")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("validation.send_otp"), nil)
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.VerifyOTP(r.Context(), &req); err != nil {
		handleServiceError(w, r, h.log, err, "verify otp")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("validation.verified_otp"), nil)
}

// RequestPasswordReset handles POST /api/auth/request-reset-password
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req request.EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		handleServiceError(w, r, h.log, err, "request password reset")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("validation.send_otp"), nil)
}

// VerifyResetOTP handles POST /api/auth/verify-reset-otp
func (h *AuthHandler) VerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.service.VerifyResetOTP(r.Context(), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "verify reset otp")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("validation.verified_rest_password_otp"), token)
}

// ResetPassword handles POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		handleServiceError(w, r, h.log, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("validation.password_reset"), nil)
}
