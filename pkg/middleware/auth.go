package middleware

import (
	"net/http"
	"strings"

	"reader-hub/pkg/i18n"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

// Auth validates the Bearer JWT and stores user id and role in the context
func Auth(tokens *utils.TokenManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := i18n.FromContext(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, t.T("TOKEN_MISSING"))
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				utils.ResponseUnauthorized(w, t.T("TOKEN_INVALID"))
				return
			}

			claims, err := tokens.ParseToken(strings.TrimSpace(token))
			if err != nil {
				logger.Warn("Invalid token", zap.String("path", r.URL.Path), zap.Error(err))
				utils.ResponseUnauthorized(w, t.T("TOKEN_INVALID"))
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Role)
			if _, ok := utils.GetUserIDFromContext(ctx); !ok {
				utils.ResponseUnauthorized(w, t.T("TOKEN_INVALID"))
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Auth
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := i18n.FromContext(r.Context())

			role, ok := utils.GetRoleFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, t.T("UNAUTHORIZED"))
				return
			}

			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			userID, _ := utils.GetUserIDFromContext(r.Context())
			logger.Warn("Role check failed",
				zap.String("user_id", userID.String()),
				zap.String("role", role),
				zap.Strings("allowed", roles),
				zap.String("path", r.URL.Path))
			utils.ResponseForbidden(w, t.T("FORBIDDEN"))
		})
	}
}
