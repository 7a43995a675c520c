package repository

import (
	"context"

	"reader-hub/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Repository struct {
	User       UserRepository
	Category   CategoryRepository
	Book       BookRepository
	ResetToken ResetTokenRepository
	Store      Pinger
}

// NewRepository wires the Postgres implementations.
func NewRepository(db database.PgxIface, resetTokens ResetTokenRepository, log *zap.Logger) *Repository {
	return &Repository{
		User:       NewUserRepository(db, log),
		Category:   NewCategoryRepository(db, log),
		Book:       NewBookRepository(db, log),
		ResetToken: resetTokens,
		Store:      db,
	}
}

// NewMongoRepository wires the MongoDB implementations.
func NewMongoRepository(db *mongo.Database, store Pinger, resetTokens ResetTokenRepository, log *zap.Logger) *Repository {
	return &Repository{
		User:       NewMongoUserRepository(db, log),
		Category:   NewMongoCategoryRepository(db, log),
		Book:       NewMongoBookRepository(db, log),
		ResetToken: resetTokens,
		Store:      store,
	}
}
