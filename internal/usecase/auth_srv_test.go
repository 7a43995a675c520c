package usecase

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"reader-hub/internal/data/entity"
	"reader-hub/internal/data/repository"
	"reader-hub/internal/dto/request"
	"reader-hub/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var baseTime = time.Date(2025, 3, 6, 12, 0, 0, 0, time.UTC)

type authFixture struct {
	svc    *authService
	users  *fakeUserRepo
	resets *fakeResetTokens
	mail   *fakeMailer
	tokens *utils.TokenManager
	now    time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users:  newFakeUserRepo(),
		resets: newFakeResetTokens(),
		mail:   &fakeMailer{},
		tokens: utils.NewTokenManager("test-secret", time.Hour, "reader-hub"),
		now:    baseTime,
	}
	config := &utils.Config{
		OTP:      utils.OTPConfig{ExpiryMinutes: 10, Length: 6, MaxPerDay: 5},
		Reset:    utils.ResetConfig{TokenTTLMinutes: 10},
		Security: utils.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	repo := &repository.Repository{User: f.users, ResetToken: f.resets}
	f.svc = NewAuthService(repo, f.mail, f.tokens, config, zap.NewNop()).(*authService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *authFixture) register(t *testing.T, email, role string) {
	t.Helper()
	_, err := f.svc.Register(context.Background(), &request.RegisterRequest{
		Email: email, Password: "secret1", FirstName: "Jo", LastName: "Doe", Role: role,
	})
	require.NoError(t, err)
}

func (f *authFixture) verifiedUser(t *testing.T, email string) *entity.User {
	t.Helper()
	hash, err := utils.HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	user := &entity.User{
		Base:         entity.NewBase(f.now),
		Username:     "Vera Fied",
		Email:        email,
		PasswordHash: hash,
		Role:         entity.RoleClient,
		IsVerified:   true,
	}
	f.users.put(user)
	return user
}

func assertKind(t *testing.T, err error, kind utils.ErrorKind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, kind), "want %s, got %v", kind, err)
}

func TestRegisterThenVerify(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, &request.RegisterRequest{
		Email: " New@Example.com ", Password: "secret1", FirstName: "Jo", LastName: "Doe", Role: "client",
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", resp.Email)
	assert.Equal(t, "Jo Doe", resp.Username)
	assert.False(t, resp.IsVerified)
	assert.Nil(t, resp.Status)

	require.Equal(t, 1, f.mail.count())
	sent := f.mail.last()
	assert.Equal(t, "new@example.com", sent.To)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), sent.Code)

	stored := f.users.get("new@example.com")
	require.NotNil(t, stored.OTP)
	assert.Equal(t, baseTime.Add(10*time.Minute), stored.OTP.ExpiresAt)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	f.now = baseTime.Add(2 * time.Minute)
	require.NoError(t, f.svc.VerifyOTP(ctx, &request.VerifyOTPRequest{Email: "new@example.com", OTP: sent.Code}))

	stored = f.users.get("new@example.com")
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTP)

	// a consumed code cannot be used again
	err = f.svc.VerifyOTP(ctx, &request.VerifyOTPRequest{Email: "new@example.com", OTP: sent.Code})
	assertKind(t, err, utils.KindInvalidOrExpiredOTP)
}

func TestRegisterPublisherStartsPending(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Register(context.Background(), &request.RegisterRequest{
		Email: "pub@x.com", Password: "secret1", FirstName: "Pub", LastName: "House", Role: "publisher",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Status)
	assert.Equal(t, entity.StatusPending, *resp.Status)
}

func TestRegisterDuplicateEmailIgnoresCase(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "client")

	_, err := f.svc.Register(context.Background(), &request.RegisterRequest{
		Email: "A@X.COM", Password: "secret1", FirstName: "Jo", LastName: "Doe", Role: "author",
	})
	assertKind(t, err, utils.KindDuplicate)
	assert.Equal(t, "email_exist", utils.ToAppError(err).Key)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), &request.RegisterRequest{
		Email: "not-an-email", Password: "123", FirstName: "Jo", LastName: "Doe", Role: "admin",
	})
	assertKind(t, err, utils.KindValidation)

	fields := map[string]bool{}
	for _, fe := range utils.ToAppError(err).Fields {
		fields[fe.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.True(t, fields["role"])
	assert.Zero(t, f.mail.count())
}

func TestRegisterSucceedsWhenMailFails(t *testing.T) {
	f := newAuthFixture(t)
	f.mail.err = errors.New("smtp down")

	f.register(t, "a@x.com", "client")
	assert.NotNil(t, f.users.get("a@x.com"))
}

func TestIssueOTPNotificationFailureKeepsCode(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "client")
	f.mail.err = errors.New("smtp down")

	err := f.svc.IssueOTP(context.Background(), "a@x.com")
	assertKind(t, err, utils.KindNotificationFailure)
	assert.NotNil(t, f.users.get("a@x.com").OTP)
}

func TestIssueOTPUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	err := f.svc.IssueOTP(context.Background(), "nobody@x.com")
	assertKind(t, err, utils.KindNotFound)
}

func TestIssueOTPAlreadyVerifiedMutatesNothing(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedUser(t, "v@x.com")

	err := f.svc.IssueOTP(context.Background(), "v@x.com")
	assertKind(t, err, utils.KindAlreadyVerified)
	assert.Zero(t, f.users.updates)
	assert.Zero(t, f.mail.count())
	assert.Nil(t, f.users.get("v@x.com").OTP)
}

func TestIssueOTPRepairsPublisherStatus(t *testing.T) {
	f := newAuthFixture(t)
	f.users.put(&entity.User{Base: entity.NewBase(f.now), Email: "p@x.com", Role: entity.RolePublisher})

	require.NoError(t, f.svc.IssueOTP(context.Background(), "p@x.com"))
	stored := f.users.get("p@x.com")
	require.NotNil(t, stored.Status)
	assert.Equal(t, entity.StatusPending, *stored.Status)
}

func TestVerifyOTPExpiryBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		ok      bool
	}{
		{"just before expiry", 9*time.Minute + 59*time.Second, true},
		{"exactly at expiry", 10 * time.Minute, true},
		{"after expiry", 10*time.Minute + time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			f.register(t, "a@x.com", "client")
			code := f.mail.last().Code

			f.now = baseTime.Add(tt.elapsed)
			err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{Email: "a@x.com", OTP: code})
			if tt.ok {
				require.NoError(t, err)
				assert.True(t, f.users.get("a@x.com").IsVerified)
				return
			}
			assertKind(t, err, utils.KindInvalidOrExpiredOTP)
			assert.False(t, f.users.get("a@x.com").IsVerified)
		})
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "client")

	wrong := "000000"
	if f.mail.last().Code == wrong {
		wrong = "111111"
	}
	err := f.svc.VerifyOTP(context.Background(), &request.VerifyOTPRequest{Email: "a@x.com", OTP: wrong})
	assertKind(t, err, utils.KindInvalidOrExpiredOTP)
	assert.NotNil(t, f.users.get("a@x.com").OTP)
}

func TestVerifyOTPChecksCodeBeforeVerifiedFlag(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedUser(t, "v@x.com")
	ctx := context.Background()

	// no OTP on record
	err := f.svc.VerifyOTP(ctx, &request.VerifyOTPRequest{Email: "v@x.com", OTP: "123456"})
	assertKind(t, err, utils.KindInvalidOrExpiredOTP)

	// a valid reset code on a verified account
	require.NoError(t, f.svc.RequestPasswordReset(ctx, "v@x.com"))
	err = f.svc.VerifyOTP(ctx, &request.VerifyOTPRequest{Email: "v@x.com", OTP: f.mail.last().Code})
	assertKind(t, err, utils.KindAlreadyVerified)
}

func TestDailyOTPLimit(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "a@x.com", "client")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		f.now = f.now.Add(time.Minute)
		require.NoError(t, f.svc.IssueOTP(ctx, "a@x.com"))
	}
	assert.Equal(t, 5, f.users.get("a@x.com").OTP.AttemptsToday)

	err := f.svc.IssueOTP(ctx, "a@x.com")
	assertKind(t, err, utils.KindOTPLimitReached)
	assert.Equal(t, 5, f.mail.count())

	f.now = baseTime.Add(24 * time.Hour)
	require.NoError(t, f.svc.IssueOTP(ctx, "a@x.com"))
	assert.Equal(t, 1, f.users.get("a@x.com").OTP.AttemptsToday)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedUser(t, "v@x.com")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "V@x.com"))
	code := f.mail.last().Code

	f.now = baseTime.Add(time.Minute)
	token, err := f.svc.VerifyResetOTP(ctx, &request.VerifyOTPRequest{Email: "v@x.com", OTP: code})
	require.NoError(t, err)
	assert.Len(t, token.ResetToken, 64)
	assert.Equal(t, f.now.Add(10*time.Minute), token.ExpiresAt)

	stored := f.users.get("v@x.com")
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTP)

	req := &request.ResetPasswordRequest{Email: "v@x.com", ResetToken: token.ResetToken, NewPassword: "brand-new"}
	require.NoError(t, f.svc.ResetPassword(ctx, req))
	assert.True(t, utils.CheckPasswordHash("brand-new", f.users.get("v@x.com").PasswordHash))

	// the token is single use
	req = &request.ResetPasswordRequest{Email: "v@x.com", ResetToken: token.ResetToken, NewPassword: "another1"}
	assertKind(t, f.svc.ResetPassword(ctx, req), utils.KindInvalidResetToken)
	assert.True(t, utils.CheckPasswordHash("brand-new", f.users.get("v@x.com").PasswordHash))
}

func TestResetPasswordRequiresToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.verifiedUser(t, "v@x.com")

	err := f.svc.ResetPassword(context.Background(), &request.ResetPasswordRequest{
		Email: "v@x.com", ResetToken: "forged", NewPassword: "brand-new",
	})
	assertKind(t, err, utils.KindInvalidResetToken)
	assert.Equal(t, user.PasswordHash, f.users.get("v@x.com").PasswordHash)
}

func TestResetPasswordWrongTokenKeepsRealOne(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedUser(t, "v@x.com")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "v@x.com"))
	token, err := f.svc.VerifyResetOTP(ctx, &request.VerifyOTPRequest{Email: "v@x.com", OTP: f.mail.last().Code})
	require.NoError(t, err)

	err = f.svc.ResetPassword(ctx, &request.ResetPasswordRequest{
		Email: "v@x.com", ResetToken: "someone-elses-guess", NewPassword: "hijacked",
	})
	assertKind(t, err, utils.KindInvalidResetToken)

	require.NoError(t, f.svc.ResetPassword(ctx, &request.ResetPasswordRequest{
		Email: "v@x.com", ResetToken: token.ResetToken, NewPassword: "brand-new",
	}))
	assert.True(t, utils.CheckPasswordHash("brand-new", f.users.get("v@x.com").PasswordHash))
}

func TestVerifyResetOTPExpired(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedUser(t, "v@x.com")
	ctx := context.Background()

	require.NoError(t, f.svc.RequestPasswordReset(ctx, "v@x.com"))
	f.now = baseTime.Add(11 * time.Minute)

	_, err := f.svc.VerifyResetOTP(ctx, &request.VerifyOTPRequest{Email: "v@x.com", OTP: f.mail.last().Code})
	assertKind(t, err, utils.KindInvalidOrExpiredOTP)
	assert.Empty(t, f.resets.tokens)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	user := f.verifiedUser(t, "v@x.com")
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, &request.LoginRequest{Email: "V@X.com", Password: "secret1"})
	require.NoError(t, err)

	claims, err := f.tokens.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, "client", claims.Role)
}

func TestLoginDoesNotRevealWhichPartFailed(t *testing.T) {
	f := newAuthFixture(t)
	f.verifiedUser(t, "v@x.com")
	ctx := context.Background()

	_, unknown := f.svc.Login(ctx, &request.LoginRequest{Email: "nobody@x.com", Password: "secret1"})
	_, wrong := f.svc.Login(ctx, &request.LoginRequest{Email: "v@x.com", Password: "wrong-pass"})

	assertKind(t, unknown, utils.KindInvalidCredentials)
	assertKind(t, wrong, utils.KindInvalidCredentials)
	assert.Equal(t, utils.ToAppError(unknown).Key, utils.ToAppError(wrong).Key)
	assert.Equal(t, utils.ToAppError(unknown).Status, utils.ToAppError(wrong).Status)
}

func TestAuthStoreFailureIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	f.users.err = errStoreDown

	err := f.svc.IssueOTP(context.Background(), "a@x.com")
	assertKind(t, err, utils.KindInternal)
	assert.ErrorIs(t, err, errStoreDown)
}
