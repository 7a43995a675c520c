package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reader-hub/internal/data/entity"
	"reader-hub/internal/data/repository"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

// SeedAdmin creates the verified admin account unless the email is taken.
func SeedAdmin(ctx context.Context, users repository.UserRepository, config *utils.Config, log *zap.Logger) error {
	email := utils.NormalizeEmail(config.Seed.AdminEmail)

	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		log.Info("Admin already seeded", zap.String("email", email))
		return nil
	}

	hashed, err := utils.HashPassword(config.Seed.AdminPassword, config.Security.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := &entity.User{
		Base:         entity.NewBase(time.Now()),
		Username:     "Admin",
		Email:        email,
		PasswordHash: hashed,
		Role:         entity.RoleAdmin,
		IsVerified:   true,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info("Admin seeded", zap.String("email", email), zap.String("user_id", admin.ID.String()))
	return nil
}
