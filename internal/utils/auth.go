package utils

import (
	"context"

	"relytailors-be/internal/user"
)

type contextKey string

// SetUserContext sets user info into context (called by middleware)
func SetUserContext(ctx context.Context, id uint, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	return ctx
}

// GetUserIDFromContext retrieves userID safely
func GetUserIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(UserIDKey).(uint)
	return id, ok
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

func IsAdmin(ctx context.Context) bool {
	return user.Role(GetUserRoleFromContext(ctx)) == user.RoleAdmin
}
