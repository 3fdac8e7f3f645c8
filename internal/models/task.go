package models

import (
	"time"

	"github.com/google/uuid"
)

type Task struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Description  string     `json:"description" db:"description"`
	Priority     Priority   `json:"priority" db:"priority"`
	Status       Status     `json:"status" db:"status"`
	AssignedTo   *uuid.UUID `json:"assignedUser,omitempty" db:"assigned_to"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	LastModified time.Time  `json:"lastModified" db:"last_modified"`
}

type Status string
type Priority string

const StatusTodo Status = "Todo"
const StatusInProgress Status = "In Progress"
const StatusDone Status = "Done"

const PriorityLow Priority = "Low"
const PriorityMedium Priority = "Medium"
const PriorityHigh Priority = "High"

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// TaskView — задача для выдачи наружу: assignedUser уже развёрнут в email.
type TaskView struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Priority     Priority  `json:"priority"`
	Status       Status    `json:"status"`
	AssignedUser *string   `json:"assignedUser"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// Board — полный срез доски, сгруппированный по статусам.
// Ключи JSON совпадают со значениями статусов.
type Board struct {
	Todo       []TaskView `json:"Todo"`
	InProgress []TaskView `json:"In Progress"`
	Done       []TaskView `json:"Done"`
}

func NewBoard() Board {
	return Board{
		Todo:       []TaskView{},
		InProgress: []TaskView{},
		Done:       []TaskView{},
	}
}
