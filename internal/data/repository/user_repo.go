package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reader-hub/internal/data/entity"
	"reader-hub/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, error)
	CountAll(ctx context.Context, filter UserFilter) (int64, error)
	Update(ctx context.Context, user *entity.User) error
}

// UserFilter narrows admin listings. A nil role lists everyone.
type UserFilter struct {
	Role *entity.UserRole
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, username, email, password, role, status, is_verified,
		       otp_code, otp_expires_at, otp_attempts_today, otp_last_attempt_date,
		       created_at, updated_at`

// Create inserts a new user. A taken email yields ErrDuplicateEmail.
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	code, expiresAt, attempts, lastAttempt := otpColumns(user.OTP)
	_, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		statusColumn(user.Status),
		user.IsVerified,
		code,
		expiresAt,
		attempts,
		lastAttempt,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(ur.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return user, nil
}

// FindByEmail matches case-insensitively so mixed-case rows written
// before normalization are still found.
func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(ur.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

func (ur *userRepository) FindAll(ctx context.Context, filter UserFilter, limit, offset int) ([]*entity.User, error) {
	where, args := userWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		userColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := ur.db.Query(ctx, query, args...)
	if err != nil {
		ur.log.Error("Failed to get all users",
			zap.Error(err),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find all users limit %d offset %d: %w", limit, offset, err)
	}
	defer rows.Close()

	users := []*entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) CountAll(ctx context.Context, filter UserFilter) (int64, error) {
	where, args := userWhere(filter)
	query := `SELECT COUNT(*) FROM users` + where

	var count int64
	if err := ur.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		ur.log.Error("Database error counting users", zap.Error(err))
		return 0, fmt.Errorf("count all users: %w", err)
	}

	return count, nil
}

// Update writes the whole record, including the OTP sub-record. A nil
// OTP clears the otp_* columns.
func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, password = $4, role = $5, status = $6,
		    is_verified = $7, otp_code = $8, otp_expires_at = $9,
		    otp_attempts_today = $10, otp_last_attempt_date = $11, updated_at = $12
		WHERE id = $1
	`

	code, expiresAt, attempts, lastAttempt := otpColumns(user.OTP)
	result, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		statusColumn(user.Status),
		user.IsVerified,
		code,
		expiresAt,
		attempts,
		lastAttempt,
		user.UpdatedAt,
	)

	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func userWhere(filter UserFilter) (string, []any) {
	if filter.Role == nil {
		return "", nil
	}
	return " WHERE role = $1", []any{string(*filter.Role)}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		user        entity.User
		role        string
		status      *string
		code        *string
		expiresAt   *time.Time
		attempts    *int32
		lastAttempt *time.Time
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&role,
		&status,
		&user.IsVerified,
		&code,
		&expiresAt,
		&attempts,
		&lastAttempt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = entity.UserRole(role)
	if status != nil {
		s := entity.PublisherStatus(*status)
		user.Status = &s
	}
	if code != nil {
		otp := &entity.OTP{Code: *code}
		if expiresAt != nil {
			otp.ExpiresAt = *expiresAt
		}
		if attempts != nil {
			otp.AttemptsToday = int(*attempts)
		}
		if lastAttempt != nil {
			otp.LastAttemptDate = *lastAttempt
		}
		user.OTP = otp
	}

	return &user, nil
}

func statusColumn(status *entity.PublisherStatus) *string {
	if status == nil {
		return nil
	}
	s := string(*status)
	return &s
}

func otpColumns(otp *entity.OTP) (*string, *time.Time, *int32, *time.Time) {
	if otp == nil {
		return nil, nil, nil, nil
	}
	attempts := int32(otp.AttemptsToday)
	return &otp.Code, &otp.ExpiresAt, &attempts, &otp.LastAttemptDate
}
