package postgres

import (
	"context"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type LogStorage struct {
	pool *pgxpool.Pool
}

func (s *LogStorage) Create(ctx context.Context, entry *models.LogEntry) error {
	start := time.Now()

	query := `INSERT INTO activity_logs
				(id, user_email, action, created_at)
				VALUES ($1, $2, $3, $4)`

	_, err := s.pool.Exec(ctx, query,
		entry.ID,
		entry.User,
		entry.Action,
		entry.Timestamp,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить запись журнала", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление записи журнала: %w", err)
	}

	return nil
}

// GetRecent возвращает последние записи, новые первыми.
func (s *LogStorage) GetRecent(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	query := `SELECT id, user_email, action, created_at
				FROM activity_logs
				ORDER BY created_at DESC
				LIMIT $1`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		logger.Error("Repository: Не удалось получить журнал", err)
		return nil, fmt.Errorf("получение журнала: %w", err)
	}
	defer rows.Close()

	res := []*models.LogEntry{}
	for rows.Next() {
		var entry models.LogEntry
		if err := rows.Scan(&entry.ID, &entry.User, &entry.Action, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("чтение записи журнала: %w", err)
		}
		res = append(res, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход журнала: %w", err)
	}

	return res, nil
}
