package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"taskBoard/internal/models"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
)

type UserStorage struct {
	storage map[uuid.UUID]*models.User
	byEmail map[string]uuid.UUID
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		storage: make(map[uuid.UUID]*models.User),
		byEmail: make(map[string]uuid.UUID),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) Create(ctx context.Context, user *models.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := s.byEmail[key]; ok {
		return repo.ErrEmailTaken
	}

	stored := *user
	s.storage[user.ID] = &stored
	s.byEmail[key] = user.ID
	return nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repo.ErrNotFound
	}

	user := *s.storage[id]
	return &user, nil
}

// GetAll возвращает пользователей в стабильном порядке по id.
func (s *UserStorage) GetAll(ctx context.Context) ([]*models.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*models.User, 0, len(s.storage))
	for _, user := range s.storage {
		u := *user
		res = append(res, &u)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].ID.String() < res[j].ID.String()
	})
	return res, nil
}
