package utils

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "role"
)
