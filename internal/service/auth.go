package service

import (
	"context"
	"errors"
	"strings"

	"garment-rental-backend/internal/domain"
	"garment-rental-backend/internal/logger"
	"garment-rental-backend/internal/repository"
	"garment-rental-backend/internal/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !security.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	logger.Info("staff login", "userID", user.ID)
	return &LoginResult{AccessToken: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) SeedAdmin(ctx context.Context, email, name, password string) (*domain.User, bool, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	if len(password) < 8 {
		return nil, false, domain.NewValidationError("password", "must be at least 8 characters")
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         name,
		PasswordHash: hash,
		Role:         domain.UserRoleAdmin,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
