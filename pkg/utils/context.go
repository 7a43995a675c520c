package utils

import (
	"context"

	"github.com/google/uuid"
)

type principalKey struct{}

// principal is the authenticated caller as read from the session token
type principal struct {
	userID uuid.UUID
	role   string
}

// SetUserContext stores the caller. An unparsable id leaves the context
// without a user.
func SetUserContext(ctx context.Context, userID, role string) context.Context {
	id, err := uuid.Parse(userID)
	if err != nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, principal{userID: id, role: role})
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	if !ok {
		return uuid.Nil, false
	}
	return p.userID, true
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	if !ok || p.role == "" {
		return "", false
	}
	return p.role, true
}
