package middleware

import (
	"net/http"

	"reader-hub/pkg/i18n"
)

// Locale negotiates the response language from ?lang= and Accept-Language.
func Locale(manager *i18n.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := manager.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
			w.Header().Set("Content-Language", lang)

			ctx := i18n.WithLocalizer(r.Context(), manager.Localizer(lang))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
