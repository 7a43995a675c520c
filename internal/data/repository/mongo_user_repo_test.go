package repository

import (
	"context"
	"testing"
	"time"

	"reader-hub/internal/data/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
)

func TestUserDocumentRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC)
	status := entity.StatusPending
	user := &entity.User{
		Base:         entity.NewBase(now),
		Username:     "Pub Lisher",
		Email:        "pub@x.com",
		PasswordHash: "hash",
		Role:         entity.RolePublisher,
		Status:       &status,
		OTP:          &entity.OTP{Code: "123456", ExpiresAt: now.Add(10 * time.Minute), AttemptsToday: 1, LastAttemptDate: now},
	}

	got, err := newUserDocument(user).entity()
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: unique_email_index",
		}))

		err := repo.Create(context.Background(), &entity.User{Base: entity.NewBase(time.Now()), Email: "a@x.com"})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, zap.NewNop())
		id := uuid.New()
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "reader.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id.String()},
			{Key: "username", Value: "Jo Doe"},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "hash"},
			{Key: "role", Value: "client"},
			{Key: "isVerified", Value: true},
			{Key: "otp", Value: nil},
		}))

		user, err := repo.FindByEmail(context.Background(), " A@x.com")
		require.NoError(t, err)
		require.NotNil(t, user)

		started := mt.GetStartedEvent()
		require.NotNil(t, started)
		filter := started.Command.Lookup("filter").Document()
		assert.Equal(t, "a@x.com", filter.Lookup("email").StringValue())
		assert.Equal(t, id, user.ID)
		assert.True(t, user.IsVerified)
		assert.Nil(t, user.OTP)
	})

	mt.Run("find by email missing", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "reader.users", mtest.FirstBatch))

		user, err := repo.FindByEmail(context.Background(), "nobody@x.com")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB, zap.NewNop())
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.Update(context.Background(), &entity.User{Base: entity.NewBase(time.Now())})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
