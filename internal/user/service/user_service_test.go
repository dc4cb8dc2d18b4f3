package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/auth"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/user/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/user/repository"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/user/repository/mocks"
)

var testTokens = auth.NewTokenManager("test-secret-key")

func TestUserService_Register(t *testing.T) {
	mockRepo := new(mocks.MockUserRepository)
	userServiceInstance := NewUserService(mockRepo, testTokens)

	ctx := context.TODO()
	registerReq := domain.RegisterRequest{
		Name:     "Test Rider",
		Email:    "Test@Example.com",
		Password: "password123",
	}

	t.Run("Successful registration", func(t *testing.T) {
		// mock.AnythingOfType karena password hash berbeda setiap kali
		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

		user, err := userServiceInstance.Register(ctx, registerReq)

		assert.NoError(t, err)
		assert.NotNil(t, user)
		assert.Equal(t, "test@example.com", user.Email) // Email dinormalisasi lowercase
		assert.False(t, user.IsAdmin)
		assert.Empty(t, user.PasswordHash)
		assert.NotEmpty(t, user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("User already exists", func(t *testing.T) {
		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrUserConflict).Once()

		user, err := userServiceInstance.Register(ctx, registerReq)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, ErrUserAlreadyExists)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository error on CreateUser", func(t *testing.T) {
		mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*domain.User")).Return(errors.New("database error")).Once()

		user, err := userServiceInstance.Register(ctx, registerReq)

		assert.Nil(t, user)
		assert.Contains(t, err.Error(), "could not save user")
		mockRepo.AssertExpectations(t)
	})
}

func TestUserService_Login(t *testing.T) {
	mockRepo := new(mocks.MockUserRepository)
	userServiceInstance := NewUserService(mockRepo, testTokens)
	ctx := context.TODO()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	mockUser := &domain.User{
		ID:           "user-123",
		Email:        "test@example.com",
		PasswordHash: string(hashedPassword),
		IsAdmin:      true,
	}

	loginReq := domain.LoginRequest{
		Identifier: "test@example.com",
		Password:   "password123",
	}

	t.Run("Successful login", func(t *testing.T) {
		mockRepo.On("GetUserByIdentifier", ctx, loginReq.Identifier).Return(mockUser, nil).Once()

		resp, err := userServiceInstance.Login(ctx, loginReq)

		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.Equal(t, mockUser.ID, resp.User.ID)
		assert.NotEmpty(t, resp.Token)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Token carries the admin claim", func(t *testing.T) {
		mockRepo.On("GetUserByIdentifier", ctx, loginReq.Identifier).Return(mockUser, nil).Once()

		resp, err := userServiceInstance.Login(ctx, loginReq)
		assert.NoError(t, err)

		principal, err := testTokens.Verify(resp.Token)
		assert.NoError(t, err)
		assert.Equal(t, "user-123", principal.UserID)
		assert.True(t, principal.IsAdmin)
	})

	t.Run("User not found", func(t *testing.T) {
		mockRepo.On("GetUserByIdentifier", ctx, loginReq.Identifier).Return(nil, repository.ErrUserNotFound).Once()

		resp, err := userServiceInstance.Login(ctx, loginReq)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Incorrect password", func(t *testing.T) {
		mockRepo.On("GetUserByIdentifier", ctx, loginReq.Identifier).Return(mockUser, nil).Once()

		resp, err := userServiceInstance.Login(ctx, domain.LoginRequest{
			Identifier: "test@example.com",
			Password:   "wrongpassword",
		})

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository error on GetUserByIdentifier", func(t *testing.T) {
		mockRepo.On("GetUserByIdentifier", ctx, loginReq.Identifier).Return(nil, errors.New("some db error")).Once()

		resp, err := userServiceInstance.Login(ctx, loginReq)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		mockRepo.AssertExpectations(t)
	})
}

func TestUserService_GetEmail(t *testing.T) {
	mockRepo := new(mocks.MockUserRepository)
	userServiceInstance := NewUserService(mockRepo, testTokens)
	ctx := context.TODO()

	t.Run("Found", func(t *testing.T) {
		mockRepo.On("GetUserByID", ctx, "user-123").Return(&domain.User{ID: "user-123", Email: "rider@example.com"}, nil).Once()

		email, err := userServiceInstance.GetEmail(ctx, "user-123")

		assert.NoError(t, err)
		assert.Equal(t, "rider@example.com", email)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo.On("GetUserByID", ctx, "ghost").Return(nil, repository.ErrUserNotFound).Once()

		email, err := userServiceInstance.GetEmail(ctx, "ghost")

		assert.Empty(t, email)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}
