package inmemory

import (
	"context"
	"sort"
	"sync"

	"taskBoard/internal/models"
)

type LogStorage struct {
	entries []*models.LogEntry
	mtx     *sync.RWMutex
}

func NewLogStorage() *LogStorage {
	return &LogStorage{
		entries: []*models.LogEntry{},
		mtx:     &sync.RWMutex{},
	}
}

func (s *LogStorage) Create(ctx context.Context, entry *models.LogEntry) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored := *entry
	s.entries = append(s.entries, &stored)
	return nil
}

// GetRecent возвращает последние записи, новые первыми.
func (s *LogStorage) GetRecent(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*models.LogEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		e := *entry
		res = append(res, &e)
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp.After(res[j].Timestamp)
	})

	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}
