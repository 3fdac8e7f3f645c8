package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models"
	repo "taskBoard/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserStorage struct {
	pool *pgxpool.Pool
}

func (s *UserStorage) Create(ctx context.Context, user *models.User) error {
	start := time.Now()

	query := `INSERT INTO users
				(id, email, password_hash, created_at)
				VALUES ($1, $2, $3, $4)
				RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		time.Now(),
	).Scan(&user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			logger.Warn("Repository: Повторная регистрация email",
				zap.String("email", user.Email))
			return repo.ErrEmailTaken
		}
		logger.Error("Repository: Не удалось добавить пользователя", err)
		return fmt.Errorf("добавление пользователя: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT id, email, password_hash, created_at
				FROM users
				WHERE lower(email) = lower($1)`

	var user models.User
	err := s.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if err := mapNoRows(err); errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	return &user, nil
}

// GetAll возвращает пользователей в стабильном порядке по id.
func (s *UserStorage) GetAll(ctx context.Context) ([]*models.User, error) {
	query := `SELECT id, email, password_hash, created_at
				FROM users
				ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err)
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	res := []*models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("чтение строки пользователя: %w", err)
		}
		res = append(res, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход пользователей: %w", err)
	}

	return res, nil
}
