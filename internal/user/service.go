package user

import (
	"context"
	"errors"
	"strings"

	"relytailors-be/internal/auth"
	"relytailors-be/internal/logger"
	"relytailors-be/internal/validation"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

type service struct {
	repo   Repository
	tokens *auth.TokenManager
}

func NewService(repo Repository, tokens *auth.TokenManager) Service {
	return &service{repo: repo, tokens: tokens}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Register"),
	)

	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, input.Name, input.Email, hashed, RoleUser)
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			log.Info("email already registered", zap.String("email", input.Email))
		}
		return nil, err
	}

	token, err := s.tokens.Generate(u.ID, string(u.Role))
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("register service completed",
		zap.Uint("user_id", u.ID),
		zap.String("email", input.Email),
	)

	return toAuthResult(u, token), nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	input.Email = normalizeEmail(input.Email)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Info("email not found")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(input.Password, u.Password) {
		log.Info("password not match", zap.Uint("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}

	return toAuthResult(u, token), nil
}

func toAuthResult(u *User, token string) *AuthResult {
	return &AuthResult{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Token: token,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
