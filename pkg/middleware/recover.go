package middleware

import (
	"net/http"

	"reader-hub/pkg/i18n"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

// Recover turns a handler panic into a 500 envelope
func Recover(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("PANIC recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Stack("stack"),
					)

					utils.ResponseInternalError(w, i18n.FromContext(r.Context()).T("INTERNAL_ERROR"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
