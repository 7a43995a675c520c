package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindValidation          ErrorKind = "VALIDATION_FAILED"
	KindBadRequest          ErrorKind = "BAD_REQUEST"
	KindDuplicate           ErrorKind = "DUPLICATE"
	KindNotFound            ErrorKind = "NOT_FOUND"
	KindInvalidCredentials  ErrorKind = "INVALID_CREDENTIALS"
	KindInvalidOrExpiredOTP ErrorKind = "INVALID_OR_EXPIRED_OTP"
	KindAlreadyVerified     ErrorKind = "ALREADY_VERIFIED"
	KindOTPLimitReached     ErrorKind = "OTP_LIMIT_REACHED"
	KindInvalidResetToken   ErrorKind = "INVALID_RESET_TOKEN"
	KindNotificationFailure ErrorKind = "NOTIFICATION_FAILURE"
	KindConflict            ErrorKind = "CONFLICT"
	KindUnauthorized        ErrorKind = "UNAUTHORIZED"
	KindForbidden           ErrorKind = "FORBIDDEN"
	KindInternal            ErrorKind = "INTERNAL_ERROR"
)

// AppError is returned by services. Key is a message key resolved
// against the request locale by the HTTP layer.
type AppError struct {
	Kind   ErrorKind
	Key    string
	Status int
	Fields []FieldError
	Err    error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Kind, e.Key)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on kind so errors.Is(err, &AppError{Kind: KindNotFound}) works.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewAppError(kind ErrorKind, key string, status int, err error) *AppError {
	return &AppError{Kind: kind, Key: key, Status: status, Err: err}
}

func ErrValidation(fields []FieldError) *AppError {
	return &AppError{
		Kind:   KindValidation,
		Key:    "VALIDATION_FAILED",
		Status: http.StatusBadRequest,
		Fields: fields,
	}
}

func ErrBadRequest(key string) *AppError {
	return NewAppError(KindBadRequest, key, http.StatusBadRequest, nil)
}

func ErrDuplicate(key string) *AppError {
	return NewAppError(KindDuplicate, key, http.StatusBadRequest, nil)
}

func ErrNotFound(key string) *AppError {
	return NewAppError(KindNotFound, key, http.StatusNotFound, nil)
}

func ErrInvalidCredentials() *AppError {
	return NewAppError(KindInvalidCredentials, "INVALID_CREDENTIALS", http.StatusUnauthorized, nil)
}

func ErrInvalidOrExpiredOTP() *AppError {
	return NewAppError(KindInvalidOrExpiredOTP, "validation.invalid_or_expired_otp", http.StatusBadRequest, nil)
}

func ErrAlreadyVerified() *AppError {
	return NewAppError(KindAlreadyVerified, "validation.email_already_verified", http.StatusConflict, nil)
}

func ErrOTPLimitReached() *AppError {
	return NewAppError(KindOTPLimitReached, "validation.otp_limit_reached", http.StatusTooManyRequests, nil)
}

func ErrInvalidResetToken() *AppError {
	return NewAppError(KindInvalidResetToken, "validation.invalid_reset_token", http.StatusBadRequest, nil)
}

func ErrNotificationFailure(err error) *AppError {
	return NewAppError(KindNotificationFailure, "EMAIL_SENDING_FAILED", http.StatusInternalServerError, err)
}

func ErrConflict(key string, err error) *AppError {
	return NewAppError(KindConflict, key, http.StatusConflict, err)
}

func ErrUnauthorized(key string) *AppError {
	return NewAppError(KindUnauthorized, key, http.StatusUnauthorized, nil)
}

func ErrForbidden(key string) *AppError {
	return NewAppError(KindForbidden, key, http.StatusForbidden, nil)
}

func ErrInternal(key string, err error) *AppError {
	return NewAppError(KindInternal, key, http.StatusInternalServerError, err)
}

// ToAppError unwraps an AppError or wraps anything else as an internal error.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal("INTERNAL_ERROR", err)
}

func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}
