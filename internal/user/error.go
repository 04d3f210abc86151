package user

import "relytailors-be/internal/apperror"

var (
	ErrEmailExists        = apperror.Validation("User already exists")
	ErrInvalidCredentials = apperror.Authorization("Invalid email or password")
	ErrUserNotFound       = apperror.NotFound("User not found")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
