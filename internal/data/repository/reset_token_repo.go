package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ResetTokenRepository stores the single-use credential that authorizes a
// password change after a reset OTP was verified.
type ResetTokenRepository interface {
	Save(ctx context.Context, email, token string, ttl time.Duration) error
	// Consume reports whether token is the live token for email. A matching
	// token is removed; a mismatch leaves the stored token in place.
	Consume(ctx context.Context, email, token string) (bool, error)
}

type resetTokenRepository struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewResetTokenRepository(rdb *redis.Client, log *zap.Logger) ResetTokenRepository {
	return &resetTokenRepository{
		rdb: rdb,
		log: log.With(zap.String("repository", "reset_token")),
	}
}

// consumeScript deletes KEYS[1] only when it holds ARGV[1]
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func resetKey(email string) string {
	return "reset:" + email
}

func (r *resetTokenRepository) Save(ctx context.Context, email, token string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, resetKey(email), token, ttl).Err(); err != nil {
		r.log.Error("Failed to save reset token", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("save reset token for %s: %w", email, err)
	}
	return nil
}

func (r *resetTokenRepository) Consume(ctx context.Context, email, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	deleted, err := consumeScript.Run(ctx, r.rdb, []string{resetKey(email)}, token).Int()
	if err != nil {
		r.log.Error("Failed to consume reset token", zap.Error(err), zap.String("email", email))
		return false, fmt.Errorf("consume reset token for %s: %w", email, err)
	}

	return deleted == 1, nil
}
