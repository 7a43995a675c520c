package usecase

import (
	"reader-hub/internal/data/repository"
	"reader-hub/pkg/mailer"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth     AuthService
	User     UserService
	Category CategoryService
	Book     BookService
}

func NewService(
	repo *repository.Repository,
	sender mailer.Sender,
	tokens *utils.TokenManager,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Auth:     NewAuthService(repo, sender, tokens, config, log),
		User:     NewUserService(repo.User, log),
		Category: NewCategoryService(repo.Category, log),
		Book:     NewBookService(repo, log),
	}
}
