package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models"
	repo "taskBoard/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const recentLogLimit = 20

type TaskService struct {
	tasks       TaskRepository
	users       UserRepository
	logs        LogRepository
	broadcaster Broadcaster
}

func NewTaskService(tasks TaskRepository, users UserRepository, logs LogRepository, broadcaster Broadcaster) TaskService {
	return TaskService{
		tasks:       tasks,
		users:       users,
		logs:        logs,
		broadcaster: broadcaster,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.tasks.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

// GetBoard отдаёт все задачи, разложенные по трём статусам.
// Задачи с неизвестным статусом не роняют вызов, а выпадают из среза.
func (s *TaskService) GetBoard(ctx context.Context) (models.Board, error) {
	board := models.NewBoard()

	tasks, err := s.tasks.GetAll(ctx)
	if err != nil {
		return board, fmt.Errorf("получение задач: %w", err)
	}

	emails, err := s.emailsByID(ctx)
	if err != nil {
		return board, err
	}

	for _, task := range tasks {
		view := toTaskView(task, emails)
		switch task.Status {
		case models.StatusTodo:
			board.Todo = append(board.Todo, view)
		case models.StatusInProgress:
			board.InProgress = append(board.InProgress, view)
		case models.StatusDone:
			board.Done = append(board.Done, view)
		default:
			logger.Warn("Service: Задача с неизвестным статусом",
				zap.String("task_id", task.ID.String()),
				zap.String("status", string(task.Status)))
		}
	}

	return board, nil
}

func (s *TaskService) CreateTask(ctx context.Context, actor, title, description string, priority models.Priority, status models.Status) (*models.Task, error) {
	if title == "" {
		return nil, NewValidationError("title", "не может быть пустым")
	}
	if !priority.Valid() {
		return nil, NewValidationError("priority", "допустимы Low, Medium, High")
	}
	if status == "" {
		status = models.StatusTodo
	}
	if !status.Valid() {
		return nil, NewValidationError("status", "допустимы Todo, In Progress, Done")
	}

	now := time.Now()
	task := &models.Task{
		ID:           uuid.New(),
		Title:        title,
		Description:  description,
		Priority:     priority,
		Status:       status,
		CreatedAt:    now,
		LastModified: now,
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	if err := s.logAndBroadcast(ctx, actor, "Created task: "+task.Title); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTask применяет частичное обновление. Если клиент передал
// lastFetched и задача менялась после этого момента, запись отклоняется
// с актуальным состоянием задачи. Без lastFetched побеждает последняя
// запись: окно между чтением и записью ничем не защищено.
func (s *TaskService) UpdateTask(ctx context.Context, actor string, id uuid.UUID, lastFetched *time.Time, options ...models.TaskOption) (*models.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Task not found")
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if lastFetched != nil && task.LastModified.After(*lastFetched) {
		view, err := s.viewOf(ctx, task)
		if err != nil {
			return nil, err
		}
		logger.Info("Service: Конфликт версий задачи",
			zap.String("task_id", id.String()),
			zap.Time("last_modified", task.LastModified),
			zap.Time("last_fetched", *lastFetched))
		return nil, NewVersionConflict("Task was modified by someone else", view)
	}

	for _, opt := range options {
		opt(task)
	}

	if !task.Status.Valid() {
		return nil, NewValidationError("status", "допустимы Todo, In Progress, Done")
	}
	if !task.Priority.Valid() {
		return nil, NewValidationError("priority", "допустимы Low, Medium, High")
	}

	task.LastModified = nextModified(task.LastModified)

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Task not found")
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	if err := s.logAndBroadcast(ctx, actor, "Updated task: "+task.Title); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, actor string, id uuid.UUID) error {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("Task not found")
		}
		return fmt.Errorf("получение задачи: %w", err)
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewNotFound("Task not found")
		}
		return fmt.Errorf("удаление задачи: %w", err)
	}

	return s.logAndBroadcast(ctx, actor, "Deleted task: "+task.Title)
}

// SmartAssign отдаёт задачу пользователю с наименьшим числом незакрытых
// задач. Равные счётчики разрешаются стабильным порядком по id.
// Стоимость — запрос на пользователя, терпимо на малом масштабе.
func (s *TaskService) SmartAssign(ctx context.Context, actor string, id uuid.UUID) (*models.Task, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	if len(users) == 0 {
		return nil, NewNotFound("No users available")
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Task not found")
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	var chosen *models.User
	best := -1
	for _, user := range users {
		count, err := s.tasks.CountActiveByAssignee(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("подсчёт задач пользователя: %w", err)
		}
		if best < 0 || count < best {
			chosen = user
			best = count
		}
	}

	assignee := chosen.ID
	task.AssignedTo = &assignee
	task.LastModified = nextModified(task.LastModified)

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("Task not found")
		}
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	action := fmt.Sprintf("Smart assigned task: %s to %s", task.Title, chosen.Email)
	if err := s.logAndBroadcast(ctx, actor, action); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) GetRecentLogs(ctx context.Context) ([]*models.LogEntry, error) {
	entries, err := s.logs.GetRecent(ctx, recentLogLimit)
	if err != nil {
		return nil, fmt.Errorf("получение журнала: %w", err)
	}
	return entries, nil
}

// BroadcastSnapshot перечитывает доску и рассылает её всем подключённым.
// Вызывается и по клиентскому запросу resync.
func (s *TaskService) BroadcastSnapshot(ctx context.Context) {
	board, err := s.GetBoard(ctx)
	if err != nil {
		logger.Error("Service: Не удалось собрать срез доски для рассылки", err)
		return
	}
	s.broadcaster.BroadcastBoard(board)
}

// ViewOf разворачивает назначенного пользователя задачи в email.
func (s *TaskService) ViewOf(ctx context.Context, task *models.Task) (models.TaskView, error) {
	return s.viewOf(ctx, task)
}

func (s *TaskService) viewOf(ctx context.Context, task *models.Task) (models.TaskView, error) {
	emails, err := s.emailsByID(ctx)
	if err != nil {
		return models.TaskView{}, err
	}
	return toTaskView(task, emails), nil
}

func (s *TaskService) emailsByID(ctx context.Context) (map[uuid.UUID]string, error) {
	users, err := s.users.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}

	emails := make(map[uuid.UUID]string, len(users))
	for _, user := range users {
		emails[user.ID] = user.Email
	}
	return emails, nil
}

// logAndBroadcast — журнал и рассылка строго после удачной записи.
// Запись в журнал и запись задачи не объединены в транзакцию.
func (s *TaskService) logAndBroadcast(ctx context.Context, actor, action string) error {
	entry := &models.LogEntry{
		ID:        uuid.New(),
		User:      actor,
		Action:    action,
		Timestamp: time.Now(),
	}

	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("запись в журнал: %w", err)
	}

	s.BroadcastSnapshot(ctx)
	s.broadcaster.BroadcastLog(entry)
	return nil
}

// nextModified гарантирует строгий рост lastModified даже при грубых часах.
func nextModified(prev time.Time) time.Time {
	now := time.Now()
	if !now.After(prev) {
		return prev.Add(time.Millisecond)
	}
	return now
}

func toTaskView(task *models.Task, emails map[uuid.UUID]string) models.TaskView {
	view := models.TaskView{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Priority:     task.Priority,
		Status:       task.Status,
		CreatedAt:    task.CreatedAt,
		LastModified: task.LastModified,
	}
	if task.AssignedTo != nil {
		if email, ok := emails[*task.AssignedTo]; ok {
			view.AssignedUser = &email
		}
	}
	return view
}
