package handlers

import (
	"context"
	"time"

	"taskBoard/internal/models"

	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type TaskService interface {
	HealthCheck(ctx context.Context) error
	GetBoard(ctx context.Context) (models.Board, error)
	CreateTask(ctx context.Context, actor, title, description string, priority models.Priority, status models.Status) (*models.Task, error)
	UpdateTask(ctx context.Context, actor string, id uuid.UUID, lastFetched *time.Time, options ...models.TaskOption) (*models.Task, error)
	DeleteTask(ctx context.Context, actor string, id uuid.UUID) error
	SmartAssign(ctx context.Context, actor string, id uuid.UUID) (*models.Task, error)
	GetRecentLogs(ctx context.Context) ([]*models.LogEntry, error)
	ViewOf(ctx context.Context, task *models.Task) (models.TaskView, error)
}
