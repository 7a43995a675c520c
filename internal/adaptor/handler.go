package adaptor

import (
	"reader-hub/internal/data/repository"
	"reader-hub/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Category *CategoryHandler
	Book     *BookHandler
	Health   *HealthHandler
}

func NewHandler(service *usecase.Service, store repository.Pinger, log *zap.Logger) *Handler {
	return &Handler{
		Auth:     NewAuthHandler(service.Auth, log),
		User:     NewUserHandler(service.User, log),
		Category: NewCategoryHandler(service.Category, log),
		Book:     NewBookHandler(service.Book, log),
		Health:   NewHealthHandler(store, log),
	}
}
