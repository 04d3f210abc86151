package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"relytailors-be/internal/apperror"
	"relytailors-be/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, password string, role Role) (*User, error) {
	args := m.Called(ctx, name, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) ClearCart(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func newTestService(repo Repository) (Service, *auth.TokenManager) {
	tokens := auth.NewTokenManager("testsecret", 240*time.Hour)
	return NewService(repo, tokens), tokens
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()
	input := RegisterInput{Name: "Asha", Email: " Asha@Example.com ", Password: "password123"}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, tokens := newTestService(mockRepo)

		created := &User{ID: 1, Name: "Asha", Email: "asha@example.com", Password: "hashed", Role: RoleUser}
		mockRepo.On("Create", ctx, "Asha", "asha@example.com", mock.AnythingOfType("string"), RoleUser).Return(created, nil)

		res, err := svc.Register(ctx, input)

		assert.NoError(t, err)
		assert.Equal(t, uint(1), res.ID)
		assert.Equal(t, "asha@example.com", res.Email)
		assert.Equal(t, RoleUser, res.Role)

		claims, err := tokens.Parse(res.Token)
		assert.NoError(t, err)
		assert.Equal(t, uint(1), claims.UserID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("StoresHashNotPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _ := newTestService(mockRepo)

		mockRepo.On("Create", ctx, "Asha", "asha@example.com", mock.MatchedBy(func(hash string) bool {
			return hash != input.Password && CheckPasswordHash(input.Password, hash)
		}), RoleUser).Return(&User{ID: 2, Role: RoleUser}, nil)

		_, err := svc.Register(ctx, input)
		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _ := newTestService(mockRepo)

		mockRepo.On("Create", ctx, mock.Anything, mock.Anything, mock.Anything, RoleUser).Return(nil, ErrEmailExists)

		_, err := svc.Register(ctx, input)

		assert.ErrorIs(t, err, ErrEmailExists)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})

	t.Run("InvalidInput", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _ := newTestService(mockRepo)

		_, err := svc.Register(ctx, RegisterInput{Name: "Asha", Email: "asha@example.com", Password: "123"})

		assert.Error(t, err)
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _ := newTestService(mockRepo)

		mockRepo.On("Create", ctx, mock.Anything, mock.Anything, mock.Anything, RoleUser).Return(nil, errors.New("db error"))

		_, err := svc.Register(ctx, input)

		assert.EqualError(t, err, "db error")
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	email := "asha@example.com"
	password := "password123"
	hash, _ := HashPassword(password)
	stored := &User{ID: 1, Name: "Asha", Email: email, Password: hash, Role: RoleAdmin}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, tokens := newTestService(mockRepo)
		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		res, err := svc.Login(ctx, LoginInput{Email: "ASHA@example.com", Password: password})

		assert.NoError(t, err)
		assert.Equal(t, RoleAdmin, res.Role)
		claims, err := tokens.Parse(res.Token)
		assert.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _ := newTestService(mockRepo)
		mockRepo.On("FindByEmail", ctx, email).Return(nil, ErrUserNotFound)

		_, err := svc.Login(ctx, LoginInput{Email: email, Password: password})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, apperror.KindAuthorization, apperror.KindOf(err))
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _ := newTestService(mockRepo)
		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		_, err := svc.Login(ctx, LoginInput{Email: email, Password: "wrong-password"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc, _ := newTestService(mockRepo)
		mockRepo.On("FindByEmail", ctx, email).Return(nil, errors.New("connection refused"))

		_, err := svc.Login(ctx, LoginInput{Email: email, Password: password})

		assert.EqualError(t, err, "connection refused")
	})
}
