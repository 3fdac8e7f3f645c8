package service

import (
	"context"

	"taskBoard/internal/models"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(context.Context, *models.User) error
	GetByEmail(context.Context, string) (*models.User, error)
	GetAll(context.Context) ([]*models.User, error)
}

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(context.Context, *models.Task) error
	Update(context.Context, *models.Task) error
	GetByID(context.Context, uuid.UUID) (*models.Task, error)
	Delete(context.Context, uuid.UUID) error
	GetAll(context.Context) ([]*models.Task, error)
	CountActiveByAssignee(context.Context, uuid.UUID) (int, error)
}

type LogRepository interface {
	Create(context.Context, *models.LogEntry) error
	GetRecent(context.Context, int) ([]*models.LogEntry, error)
}

// Broadcaster — явная способность рассылки, внедряется в сервис
// при создании. Никакого глобального состояния.
type Broadcaster interface {
	BroadcastBoard(board models.Board)
	BroadcastLog(entry *models.LogEntry)
}
