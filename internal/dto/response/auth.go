package response

import (
	"time"

	"reader-hub/internal/data/entity"
)

// UserResponse is the sanitized user projection. It never carries the
// password hash or the OTP.
type UserResponse struct {
	ID         string                  `json:"id"`
	Username   string                  `json:"username"`
	Email      string                  `json:"email"`
	Role       entity.UserRole         `json:"role"`
	Status     *entity.PublisherStatus `json:"status,omitempty"`
	IsVerified bool                    `json:"is_verified"`
	CreatedAt  time.Time               `json:"created_at"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ResetTokenResponse struct {
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:         user.ID.String(),
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
		Status:     user.Status,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
	}
}

func UsersToResponse(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserToResponse(u))
	}
	return out
}
