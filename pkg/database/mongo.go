package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reader-hub/pkg/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo holds the client and the application database handle.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// InitMongo connects to MONGO_URI and selects the configured database.
func InitMongo(ctx context.Context, config utils.DatabaseConfig) (*Mongo, error) {
	if config.MongoURI == "" {
		return nil, errors.New("MONGO_URI is not set")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(config.MongoURI).
		SetServerSelectionTimeout(5 * time.Second)
	if config.MaxConns > 0 {
		opts.SetMaxPoolSize(uint64(config.MaxConns))
	}

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo failed: %w", err)
	}

	return &Mongo{Client: client, DB: client.Database(config.MongoDB)}, nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
