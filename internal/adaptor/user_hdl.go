package adaptor

import (
	"net/http"

	"reader-hub/internal/dto/request"
	"reader-hub/internal/usecase"
	"reader-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// GetProfile handles GET /api/users/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	// Set by the auth middleware
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, localize(r).T("UNAUTHORIZED"))
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("PROFILE_RETRIEVED"), profile)
}

// GetAllUsers handles GET /api/admin/users (admin only)
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:  utils.ParseInt(query.Get("page"), 1),
		Limit: utils.ParseInt(query.Get("limit"), 10),
	}

	users, err := h.service.GetAllUsers(r.Context(), req, query.Get("role"))
	if err != nil {
		handleServiceError(w, r, h.log, err, "get all users")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("USERS_RETRIEVED"), users)
}

// UpdatePublisherStatus handles PATCH /api/admin/users/{id}/status (admin only)
func (h *UserHandler) UpdatePublisherStatus(w http.ResponseWriter, r *http.Request) {
	var req request.UpdatePublisherStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.service.UpdatePublisherStatus(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "update publisher status")
		return
	}

	utils.ResponseSuccess(w, localize(r).T("USER_STATUS_UPDATED"), user)
}
