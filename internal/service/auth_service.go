package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/auth"
	"taskBoard/internal/logger"
	"taskBoard/internal/models"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	users  UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(users UserRepository, tokens *auth.TokenManager) AuthService {
	return AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Register создаёт пользователя и сразу выдаёт токен.
func (s *AuthService) Register(ctx context.Context, email, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("хеширование пароля: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			logger.Info("Service: Повторная регистрация", zap.String("email", email))
			return "", NewAlreadyExists("User already exists")
		}
		return "", fmt.Errorf("создание пользователя: %w", err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", fmt.Errorf("выдача токена: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.String("email", email))
	return token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", NewUnauthorized("Invalid email or password")
		}
		return "", fmt.Errorf("получение пользователя: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		logger.Info("Service: Неверный пароль", zap.String("email", email))
		return "", NewUnauthorized("Invalid email or password")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", fmt.Errorf("выдача токена: %w", err)
	}

	return token, nil
}
