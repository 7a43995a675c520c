package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"reader-hub/internal/data/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const usersCollection = "users"

type userDocument struct {
	ID         string       `bson:"_id"`
	Username   string       `bson:"username"`
	Email      string       `bson:"email"`
	Password   string       `bson:"password"`
	Role       string       `bson:"role"`
	Status     *string      `bson:"status,omitempty"`
	IsVerified bool         `bson:"isVerified"`
	OTP        *otpDocument `bson:"otp"`
	CreatedAt  time.Time    `bson:"created_at"`
	UpdatedAt  time.Time    `bson:"updated_at"`
}

type otpDocument struct {
	Code            string    `bson:"code"`
	ExpiresAt       time.Time `bson:"expires_at"`
	AttemptsToday   int32     `bson:"attempts_today"`
	LastAttemptDate time.Time `bson:"last_attempt_date"`
}

func newUserDocument(u *entity.User) *userDocument {
	doc := &userDocument{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      strings.ToLower(u.Email),
		Password:   u.PasswordHash,
		Role:       string(u.Role),
		Status:     statusColumn(u.Status),
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.OTP != nil {
		doc.OTP = &otpDocument{
			Code:            u.OTP.Code,
			ExpiresAt:       u.OTP.ExpiresAt,
			AttemptsToday:   int32(u.OTP.AttemptsToday),
			LastAttemptDate: u.OTP.LastAttemptDate,
		}
	}
	return doc
}

func (d *userDocument) entity() (*entity.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", d.ID, err)
	}

	user := &entity.User{
		Base:         entity.Base{ID: id, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt},
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         entity.UserRole(d.Role),
		IsVerified:   d.IsVerified,
	}
	if d.Status != nil {
		s := entity.PublisherStatus(*d.Status)
		user.Status = &s
	}
	if d.OTP != nil {
		user.OTP = &entity.OTP{
			Code:            d.OTP.Code,
			ExpiresAt:       d.OTP.ExpiresAt,
			AttemptsToday:   int(d.OTP.AttemptsToday),
			LastAttemptDate: d.OTP.LastAttemptDate,
		}
	}
	return user, nil
}

type mongoUserRepository struct {
	coll *mongo.Collection
	log  *zap.Logger
}

func NewMongoUserRepository(db *mongo.Database, log *zap.Logger) UserRepository {
	return &mongoUserRepository{
		coll: db.Collection(usersCollection),
		log:  log.With(zap.String("repository", "mongo_user")),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *entity.User) error {
	_, err := r.coll.InsertOne(ctx, newUserDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		r.log.Error("Failed to create user", zap.Error(err), zap.String("email", user.Email))
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	// emails are stored lower-cased, so an exact match can use unique_email_index
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find user", zap.Error(err), zap.Any("filter", filter))
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.entity()
}

func (r *mongoUserRepository) FindAll(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, mongoUserFilter(filter), opts)
	if err != nil {
		r.log.Error("Failed to get all users", zap.Error(err))
		return nil, fmt.Errorf("find all users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*entity.User, 0, len(docs))
	for i := range docs {
		user, err := docs[i].entity()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *mongoUserRepository) CountAll(ctx context.Context, filter UserFilter) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, mongoUserFilter(filter))
	if err != nil {
		r.log.Error("Failed to count users", zap.Error(err))
		return 0, fmt.Errorf("count all users: %w", err)
	}
	return count, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *entity.User) error {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID.String()}, newUserDocument(user))
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		r.log.Error("Failed to update user", zap.Error(err), zap.String("user_id", user.ID.String()))
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func mongoUserFilter(filter UserFilter) bson.M {
	if filter.Role == nil {
		return bson.M{}
	}
	return bson.M{"role": string(*filter.Role)}
}
