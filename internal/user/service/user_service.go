package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cyclebazaar/cycle-bazaar-go/internal/auth"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/platform/logger"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/user/domain"
	"github.com/cyclebazaar/cycle-bazaar-go/internal/user/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email/phone or password")
	ErrUserAlreadyExists  = errors.New("user with this email or phone number already exists")
)

type UserService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
	GetEmail(ctx context.Context, userID string) (string, error)
}

type userServiceImpl struct {
	repo   repository.UserRepository
	tokens *auth.TokenManager
}

func NewUserService(repo repository.UserRepository, tokens *auth.TokenManager) UserService {
	return &userServiceImpl{repo: repo, tokens: tokens}
}

func (s *userServiceImpl) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.PhoneNumber != nil {
		*req.PhoneNumber = strings.TrimSpace(*req.PhoneNumber)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("Register: failed to hash password", err)
		return nil, fmt.Errorf("could not process registration: %w", err)
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hashedPassword),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserConflict) {
			return nil, ErrUserAlreadyExists
		}
		logger.Error("Register: failed to create user in repo", err)
		return nil, fmt.Errorf("could not save user: %w", err)
	}

	user.PasswordHash = "" // Hapus sebelum dikembalikan
	return user, nil
}

func (s *userServiceImpl) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Identifier = strings.TrimSpace(req.Identifier)

	user, err := s.repo.GetUserByIdentifier(ctx, req.Identifier)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			logger.Error("Login: failed to get user by identifier", err)
		}
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokenString, err := s.tokens.Generate(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		logger.Error("Login: failed to sign token", err)
		return nil, fmt.Errorf("could not generate token: %w", err)
	}

	user.PasswordHash = "" // Hapus sebelum dikembalikan
	return &domain.LoginResponse{
		User:  *user,
		Token: tokenString,
	}, nil
}

// GetEmail dipakai service lain untuk notifikasi email pemilik order.
func (s *userServiceImpl) GetEmail(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}
