package wire

import (
	"net/http"

	"reader-hub/internal/adaptor"
	"reader-hub/internal/data/entity"
	"reader-hub/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCategory(
	r chi.Router,
	categoryHandler *adaptor.CategoryHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", categoryHandler.GetAll)
		r.Get("/{id}", categoryHandler.GetByID)

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireRole(log, string(entity.RoleAdmin)))
			r.Post("/", categoryHandler.Create)
			r.Put("/{id}", categoryHandler.Update)
			r.Delete("/{id}", categoryHandler.Delete)
		})
	})
}

func wireBook(
	r chi.Router,
	bookHandler *adaptor.BookHandler,
	auth func(http.Handler) http.Handler,
	log *zap.Logger,
) {
	r.Route("/api/books", func(r chi.Router) {
		r.Get("/", bookHandler.GetAll)
		r.Get("/{id}", bookHandler.GetByID)

		// Ownership is checked by the service
		r.Group(func(r chi.Router) {
			r.Use(auth, middleware.RequireRole(log, string(entity.RoleAdmin), string(entity.RolePublisher)))
			r.Post("/", bookHandler.Create)
			r.Put("/{id}", bookHandler.Update)
			r.Delete("/{id}", bookHandler.Delete)
		})
	})
}
