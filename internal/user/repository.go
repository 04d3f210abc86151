package user

import (
	"context"
	"database/sql"
	"errors"

	"relytailors-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, name, email, password string, role Role) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	ClearCart(ctx context.Context, userID uint) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, password string, role Role) (*User, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
	)

	var u User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, $4)
		 RETURNING id, name, email, password, role, created_at`,
		name, email, password, role,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			return nil, ErrEmailExists
		}
		log.Error("db: failed to insert user",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, role, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id uint) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, role, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ClearCart removes every cart line of the user. An already empty cart is not an error.
func (r *repository) ClearCart(ctx context.Context, userID uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	logger.FromCtx(ctx).Debug("cart cleared",
		zap.Uint("user_id", userID),
		zap.Int64("lines", n),
	)
	return nil
}
