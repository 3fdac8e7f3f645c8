package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TaskStorage struct {
	pool *pgxpool.Pool
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *models.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(id, title, description, priority, status, assigned_to, created_at, last_modified)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.pool.Exec(ctx, query,
		taskToCreate.ID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.Priority,
		taskToCreate.Status,
		taskToCreate.AssignedTo,
		taskToCreate.CreatedAt,
		taskToCreate.LastModified,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *models.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				priority = $3,
				status = $4,
				assigned_to = $5,
				last_modified = $6
			WHERE id = $7
			RETURNING last_modified`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.Priority,
		taskToUpdate.Status,
		taskToUpdate.AssignedTo,
		taskToUpdate.LastModified,
		taskToUpdate.ID,
	).Scan(&taskToUpdate.LastModified)

	if err != nil {
		if err := mapNoRows(err); errors.Is(err, repo.ErrNotFound) {
			return err
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	query := `SELECT id, title, description, priority, status, assigned_to, created_at, last_modified
				FROM tasks
				WHERE id = $1`

	var task models.Task
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Priority,
		&task.Status,
		&task.AssignedTo,
		&task.CreatedAt,
		&task.LastModified,
	)
	if err != nil {
		if err := mapNoRows(err); errors.Is(err, repo.ErrNotFound) {
			return nil, err
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	return &task, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return nil
}

// GetAll возвращает задачи в порядке создания.
func (s *TaskStorage) GetAll(ctx context.Context) ([]*models.Task, error) {
	start := time.Now()

	query := `SELECT id, title, description, priority, status, assigned_to, created_at, last_modified
				FROM tasks
				ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	res := []*models.Task{}
	for rows.Next() {
		var task models.Task
		err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Priority,
			&task.Status,
			&task.AssignedTo,
			&task.CreatedAt,
			&task.LastModified,
		)
		if err != nil {
			return nil, fmt.Errorf("чтение строки задачи: %w", err)
		}
		res = append(res, &task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход задач: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return res, nil
}

// CountActiveByAssignee считает незакрытые задачи пользователя.
func (s *TaskStorage) CountActiveByAssignee(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*)
				FROM tasks
				WHERE assigned_to = $1 AND status <> $2`

	var count int
	if err := s.pool.QueryRow(ctx, query, userID, models.StatusDone).Scan(&count); err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return 0, fmt.Errorf("подсчёт задач: %w", err)
	}
	return count, nil
}
