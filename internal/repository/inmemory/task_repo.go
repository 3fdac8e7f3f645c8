package inmemory

import (
	"context"
	"sync"

	"taskBoard/internal/models"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
)

type TaskStorage struct {
	storage map[uuid.UUID]*models.Task
	mtx     *sync.RWMutex
	ids     []uuid.UUID
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[uuid.UUID]*models.Task),
		mtx:     &sync.RWMutex{},
		ids:     []uuid.UUID{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored := *taskToCreate
	s.storage[taskToCreate.ID] = &stored
	s.ids = append(s.ids, taskToCreate.ID)
	return nil
}

func (s *TaskStorage) Update(ctx context.Context, taskToUpdate *models.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[taskToUpdate.ID]; !ok {
		return repo.ErrNotFound
	}

	stored := *taskToUpdate
	s.storage[taskToUpdate.ID] = &stored
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	task := *taskToGet
	return &task, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}

	delete(s.storage, id)
	for ind, val := range s.ids {
		if val == id {
			s.ids = append(s.ids[:ind], s.ids[ind+1:]...)
			break
		}
	}
	return nil
}

// GetAll возвращает задачи в порядке создания.
func (s *TaskStorage) GetAll(ctx context.Context) ([]*models.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*models.Task, 0, len(s.ids))
	for _, id := range s.ids {
		task := *s.storage[id]
		res = append(res, &task)
	}
	return res, nil
}

// CountActiveByAssignee считает незакрытые задачи пользователя.
func (s *TaskStorage) CountActiveByAssignee(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, task := range s.storage {
		if task.AssignedTo != nil && *task.AssignedTo == userID && task.Status != models.StatusDone {
			count++
		}
	}
	return count, nil
}
