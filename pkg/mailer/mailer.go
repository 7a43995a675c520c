// Package mailer delivers one-time codes to users.
package mailer

import (
	"context"
	"fmt"

	"reader-hub/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Sender delivers an OTP code to an email address.
type Sender interface {
	SendOTP(ctx context.Context, to, code string) error
}

// New returns an SMTP sender, or a log sender when no SMTP host is configured.
func New(cfg utils.EmailConfig, otpCfg utils.OTPConfig, log *zap.Logger) (Sender, error) {
	if cfg.Host == "" {
		log.Warn("SMTP_HOST not set, OTP codes will be written to the log")
		return NewLogSender(log), nil
	}
	return NewSMTPSender(cfg, otpCfg, log)
}

type smtpSender struct {
	client  *mail.Client
	from    string
	expires int
	log     *zap.Logger
}

func NewSMTPSender(cfg utils.EmailConfig, otpCfg utils.OTPConfig, log *zap.Logger) (Sender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &smtpSender{
		client:  client,
		from:    cfg.From,
		expires: otpCfg.ExpiryMinutes,
		log:     log.With(zap.String("mailer", "smtp")),
	}, nil
}

func (s *smtpSender) SendOTP(ctx context.Context, to, code string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set from %s: %w", s.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient %s: %w", to, err)
	}
	msg.Subject("Your verification code")
	msg.SetBodyString(mail.TypeTextPlain, otpBody(code, s.expires))

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.log.Error("Failed to send OTP email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("send otp to %s: %w", to, err)
	}

	s.log.Info("OTP email sent", zap.String("to", to))
	return nil
}

func otpBody(code string, expiresInMinutes int) string {
	return fmt.Sprintf("Your verification code is %s.\n\nIt expires in %d minutes. If you did not request it, ignore this email.\n",
		code, expiresInMinutes)
}

type logSender struct {
	log *zap.Logger
}

// NewLogSender writes codes to the log instead of sending them.
func NewLogSender(log *zap.Logger) Sender {
	return &logSender{log: log.With(zap.String("mailer", "log"))}
}

func (s *logSender) SendOTP(_ context.Context, to, code string) error {
	s.log.Info("OTP generated", zap.String("to", to), zap.String("otp_code", code))
	return nil
}
