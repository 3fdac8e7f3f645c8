package models

import (
	"time"

	"github.com/google/uuid"
)

// LogEntry — запись журнала действий. Email хранится строкой,
// а не ссылкой на пользователя: журнал только добавляется и не правится.
type LogEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	User      string    `json:"user" db:"user_email"`
	Action    string    `json:"action" db:"action"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
}
