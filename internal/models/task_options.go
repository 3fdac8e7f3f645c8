package models

import "github.com/google/uuid"

// TaskOption — функция частичного обновления задачи.
type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithStatus(status Status) TaskOption {
	return func(task *Task) {
		task.Status = status
	}
}

func WithPriority(priority Priority) TaskOption {
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithAssignedTo(userID *uuid.UUID) TaskOption {
	return func(task *Task) {
		task.AssignedTo = userID
	}
}
