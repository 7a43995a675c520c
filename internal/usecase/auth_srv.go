package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"reader-hub/internal/data/entity"
	"reader-hub/internal/data/repository"
	"reader-hub/internal/dto/request"
	"reader-hub/internal/dto/response"
	"reader-hub/pkg/mailer"
	"reader-hub/pkg/utils"

	"go.uber.org/zap"
)

// AuthService is the account verification state machine: registration,
// OTP issuance and verification, password reset and login.
type AuthService interface {
	Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error)
	Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error)
	IssueOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) error
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.ResetTokenResponse, error)
	ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error
}

// resetTokenBytes is the entropy of a reset-authorization token
const resetTokenBytes = 32

type authService struct {
	users       repository.UserRepository
	resetTokens repository.ResetTokenRepository
	mailer      mailer.Sender
	tokens      *utils.TokenManager
	config      *utils.Config
	log         *zap.Logger
	now         func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	sender mailer.Sender,
	tokens *utils.TokenManager,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:       repo.User,
		resetTokens: repo.ResetToken,
		mailer:      sender,
		tokens:      tokens,
		config:      config,
		log:         log.With(zap.String("service", "auth")),
		now:         time.Now,
	}
}

func (s *authService) Register(ctx context.Context, req *request.RegisterRequest) (*response.UserResponse, error) {
	// 1. Validate input
	req.Email = utils.NormalizeEmail(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		s.log.Warn("Register validation failed", zap.Any("errors", fields))
		return nil, utils.ErrValidation(fields)
	}

	// 2. Check email is free
	existing, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if existing != nil {
		return nil, utils.ErrDuplicate("email_exist")
	}

	// 3. Hash password
	hashed, err := utils.HashPassword(req.Password, s.config.Security.BcryptCost)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	// 4. Build user, publishers start pending
	user := &entity.User{
		Base:         entity.NewBase(s.now()),
		Username:     req.FirstName + " " + req.LastName,
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         entity.UserRole(req.Role),
	}
	user.EnsurePublisherStatus()

	// 5. Save, the unique index catches a concurrent registration
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, utils.ErrDuplicate("email_exist")
		}
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	s.log.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	// 6. Send the first code. The account exists either way, so a failure
	// here only means the user has to ask for a new code.
	if err := s.IssueOTP(ctx, user.Email); err != nil {
		s.log.Warn("Failed to send verification OTP after register",
			zap.String("email", user.Email), zap.Error(err))
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (s *authService) Login(ctx context.Context, req *request.LoginRequest) (*response.LoginResponse, error) {
	// 1. Validate
	req.Email = utils.NormalizeEmail(req.Email)
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	// 2. Find user
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	// 3. Unknown email and wrong password look the same to the caller
	if user == nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		s.log.Warn("Invalid login attempt", zap.String("email", req.Email))
		return nil, utils.ErrInvalidCredentials()
	}

	// 4. Issue token
	token, expiresAt, err := s.tokens.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.String("user_id", user.ID.String()))
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &response.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// IssueOTP sends a code for the initial email verification.
func (s *authService) IssueOTP(ctx context.Context, email string) error {
	// 1. Find user
	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	// 2. Initial verification only
	if user.IsVerified {
		return utils.ErrAlreadyVerified()
	}

	// 3. Older publisher records may lack a status
	user.EnsurePublisherStatus()

	// 4. Generate, persist and send
	return s.issueCode(ctx, user)
}

func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) error {
	// 1. Validate
	req.Email = utils.NormalizeEmail(req.Email)
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return utils.ErrValidation(fields)
	}

	// 2. Find user
	user, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	// 3. Code and expiry come before the already-verified check
	if !user.OTP.Matches(req.OTP, s.now()) {
		s.log.Warn("Invalid or expired OTP", zap.String("email", req.Email))
		return utils.ErrInvalidOrExpiredOTP()
	}
	if user.IsVerified {
		return utils.ErrAlreadyVerified()
	}

	// 4. Mark verified and drop the whole OTP sub-record
	user.IsVerified = true
	user.OTP = nil
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}

	s.log.Info("Email verified", zap.String("user_id", user.ID.String()))
	return nil
}

// RequestPasswordReset sends a reset code regardless of verification state.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.findUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.issueCode(ctx, user)
}

// VerifyResetOTP consumes a reset code and hands out the single-use token
// that ResetPassword requires. The verified flag is left alone.
func (s *authService) VerifyResetOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.ResetTokenResponse, error) {
	// 1. Validate
	req.Email = utils.NormalizeEmail(req.Email)
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	// 2. Find user and match code
	user, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !user.OTP.Matches(req.OTP, now) {
		s.log.Warn("Invalid or expired reset OTP", zap.String("email", req.Email))
		return nil, utils.ErrInvalidOrExpiredOTP()
	}

	// 3. Clear the OTP
	user.OTP = nil
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	// 4. Issue the reset-authorization token
	token, err := utils.GenerateToken(resetTokenBytes)
	if err != nil {
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	ttl := s.config.Reset.TokenTTL()
	if err := s.resetTokens.Save(ctx, user.Email, token, ttl); err != nil {
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}

	s.log.Info("Reset OTP verified", zap.String("user_id", user.ID.String()))
	return &response.ResetTokenResponse{ResetToken: token, ExpiresAt: now.Add(ttl)}, nil
}

func (s *authService) ResetPassword(ctx context.Context, req *request.ResetPasswordRequest) error {
	// 1. Validate
	req.Email = utils.NormalizeEmail(req.Email)
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return utils.ErrValidation(fields)
	}

	// 2. Find user
	user, err := s.findUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}

	// 3. Consume the token issued by VerifyResetOTP
	ok, err := s.resetTokens.Consume(ctx, user.Email, req.ResetToken)
	if err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if !ok {
		s.log.Warn("Reset attempted without a valid token", zap.String("email", req.Email))
		return utils.ErrInvalidResetToken()
	}

	// 4. Replace password hash
	hashed, err := utils.HashPassword(req.NewPassword, s.config.Security.BcryptCost)
	if err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}
	user.PasswordHash = hashed
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}

	s.log.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}

// ==================== HELPER METHODS ====================

func (s *authService) findUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	req := request.EmailRequest{Email: utils.NormalizeEmail(email)}
	if fields := utils.ValidateStruct(req); len(fields) > 0 {
		return nil, utils.ErrValidation(fields)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, utils.ErrInternal("INTERNAL_ERROR", err)
	}
	if user == nil {
		return nil, utils.ErrNotFound("validation.email_not_found")
	}
	return user, nil
}

// issueCode stores a fresh OTP on the user and sends it. The daily limit is
// checked before anything is written. A send failure is reported even
// though the code stays stored and usable.
func (s *authService) issueCode(ctx context.Context, user *entity.User) error {
	now := s.now()

	attempts := user.OTP.AttemptsOn(now)
	if limit := s.config.OTP.MaxPerDay; limit > 0 && attempts >= limit {
		s.log.Warn("Daily OTP limit reached",
			zap.String("email", user.Email), zap.Int("attempts", attempts))
		return utils.ErrOTPLimitReached()
	}

	code, err := utils.GenerateOTP(s.config.OTP.Length)
	if err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}

	user.OTP = &entity.OTP{
		Code:            code,
		ExpiresAt:       now.Add(s.config.OTP.Expiry()),
		AttemptsToday:   attempts + 1,
		LastAttemptDate: now,
	}
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return utils.ErrInternal("INTERNAL_ERROR", err)
	}

	if err := s.mailer.SendOTP(ctx, user.Email, code); err != nil {
		s.log.Error("Failed to deliver OTP", zap.String("email", user.Email), zap.Error(err))
		return utils.ErrNotificationFailure(err)
	}

	s.log.Info("OTP issued",
		zap.String("user_id", user.ID.String()),
		zap.Time("expires_at", user.OTP.ExpiresAt))
	return nil
}
