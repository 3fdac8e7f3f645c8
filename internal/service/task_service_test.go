package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"taskBoard/internal/logger"
	"taskBoard/internal/models"
	repo "taskBoard/internal/repository"
	"taskBoard/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init(true)
}

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) Create(ctx context.Context, t *models.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *models.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskRepository) GetAll(ctx context.Context) ([]*models.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Task), args.Error(1)
}

func (m *MockTaskRepository) CountActiveByAssignee(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockLogRepository - мок журнала действий
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Create(ctx context.Context, e *models.LogEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockLogRepository) GetRecent(ctx context.Context, limit int) ([]*models.LogEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LogEntry), args.Error(1)
}

// FakeBroadcaster запоминает рассылки вместо отправки
type FakeBroadcaster struct {
	mtx    sync.Mutex
	boards []models.Board
	logs   []*models.LogEntry
}

func (f *FakeBroadcaster) BroadcastBoard(board models.Board) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.boards = append(f.boards, board)
}

func (f *FakeBroadcaster) BroadcastLog(entry *models.LogEntry) {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.logs = append(f.logs, entry)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)
var _ service.UserRepository = (*MockUserRepository)(nil)
var _ service.LogRepository = (*MockLogRepository)(nil)
var _ service.Broadcaster = (*FakeBroadcaster)(nil)

type testEnv struct {
	tasks       *MockTaskRepository
	users       *MockUserRepository
	logs        *MockLogRepository
	broadcaster *FakeBroadcaster
	svc         service.TaskService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		tasks:       new(MockTaskRepository),
		users:       new(MockUserRepository),
		logs:        new(MockLogRepository),
		broadcaster: &FakeBroadcaster{},
	}
	env.svc = service.NewTaskService(env.tasks, env.users, env.logs, env.broadcaster)
	return env
}

// TestTaskService_CreateTask тестирует создание задачи
func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		title       string
		priority    models.Priority
		status      models.Status
		setupMock   func(*testEnv)
		expectError string
		wantStatus  models.Status
	}{
		{
			name:     "success - status defaults to Todo",
			title:    "Draft release notes",
			priority: models.PriorityHigh,
			status:   "",
			setupMock: func(env *testEnv) {
				env.tasks.On("Create", mock.Anything, mock.Anything).Return(nil)
				env.logs.On("Create", mock.Anything, mock.Anything).Return(nil)
				env.tasks.On("GetAll", mock.Anything).Return([]*models.Task{}, nil)
				env.users.On("GetAll", mock.Anything).Return([]*models.User{}, nil)
			},
			wantStatus: models.StatusTodo,
		},
		{
			name:        "error - empty title",
			title:       "",
			priority:    models.PriorityLow,
			expectError: service.CodeValidationError,
		},
		{
			name:        "error - unknown priority",
			title:       "Task",
			priority:    "Urgent",
			expectError: service.CodeValidationError,
		},
		{
			name:        "error - unknown status",
			title:       "Task",
			priority:    models.PriorityLow,
			status:      "Archived",
			expectError: service.CodeValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			if tt.setupMock != nil {
				tt.setupMock(env)
			}

			task, err := env.svc.CreateTask(ctx, "a@x.com", tt.title, "", tt.priority, tt.status)

			if tt.expectError != "" {
				require.Error(t, err)
				businessErr, ok := err.(*service.BusinessError)
				require.True(t, ok)
				assert.Equal(t, tt.expectError, businessErr.Code)
				env.tasks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, task.Status)
			assert.False(t, task.LastModified.IsZero())
			env.tasks.AssertExpectations(t)
		})
	}
}

// TestTaskService_CreateTask_Log тестирует ровно одну запись журнала на мутацию
func TestTaskService_CreateTask_Log(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	var logged []*models.LogEntry
	env.tasks.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.logs.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		logged = append(logged, args.Get(1).(*models.LogEntry))
	}).Return(nil)
	env.tasks.On("GetAll", mock.Anything).Return([]*models.Task{}, nil)
	env.users.On("GetAll", mock.Anything).Return([]*models.User{}, nil)

	_, err := env.svc.CreateTask(ctx, "a@x.com", "Draft release notes", "", models.PriorityHigh, "")
	require.NoError(t, err)

	require.Len(t, logged, 1)
	assert.Equal(t, "a@x.com", logged[0].User)
	assert.Equal(t, "Created task: Draft release notes", logged[0].Action)

	// рассылка получила и доску, и запись журнала
	assert.Len(t, env.broadcaster.boards, 1)
	assert.Len(t, env.broadcaster.logs, 1)
}

// TestTaskService_UpdateTask тестирует частичное обновление и конфликт версий
func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	stored := func() *models.Task {
		return &models.Task{
			ID:           taskID,
			Title:        "Old title",
			Priority:     models.PriorityLow,
			Status:       models.StatusTodo,
			CreatedAt:    time.Now().Add(-time.Hour),
			LastModified: time.Now().Add(-time.Minute),
		}
	}

	t.Run("success - patch applied, lastModified grows", func(t *testing.T) {
		env := newTestEnv()
		task := stored()
		before := task.LastModified

		env.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
		env.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)
		env.logs.On("Create", mock.Anything, mock.Anything).Return(nil)
		env.tasks.On("GetAll", mock.Anything).Return([]*models.Task{}, nil)
		env.users.On("GetAll", mock.Anything).Return([]*models.User{}, nil)

		updated, err := env.svc.UpdateTask(ctx, "a@x.com", taskID, nil,
			models.WithTitle("New title"),
			models.WithStatus(models.StatusDone),
		)
		require.NoError(t, err)
		assert.Equal(t, "New title", updated.Title)
		assert.Equal(t, models.StatusDone, updated.Status)
		assert.True(t, updated.LastModified.After(before))
	})

	t.Run("conflict - stored lastModified newer than lastFetched", func(t *testing.T) {
		env := newTestEnv()
		task := stored()
		lastFetched := task.LastModified.Add(-time.Second)

		env.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
		env.users.On("GetAll", mock.Anything).Return([]*models.User{}, nil)

		_, err := env.svc.UpdateTask(ctx, "a@x.com", taskID, &lastFetched,
			models.WithTitle("New title"))

		require.Error(t, err)
		businessErr, ok := err.(*service.BusinessError)
		require.True(t, ok)
		assert.Equal(t, service.CodeVersionConflict, businessErr.Code)
		// конфликт несёт актуальное состояние задачи
		current, ok := businessErr.Details["currentTask"].(models.TaskView)
		require.True(t, ok)
		assert.Equal(t, "Old title", current.Title)
		env.tasks.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("no conflict - lastFetched at or after lastModified", func(t *testing.T) {
		env := newTestEnv()
		task := stored()
		lastFetched := task.LastModified

		env.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
		env.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)
		env.logs.On("Create", mock.Anything, mock.Anything).Return(nil)
		env.tasks.On("GetAll", mock.Anything).Return([]*models.Task{}, nil)
		env.users.On("GetAll", mock.Anything).Return([]*models.User{}, nil)

		_, err := env.svc.UpdateTask(ctx, "a@x.com", taskID, &lastFetched,
			models.WithTitle("New title"))
		require.NoError(t, err)
	})

	t.Run("error - unknown status in patch", func(t *testing.T) {
		env := newTestEnv()
		env.tasks.On("GetByID", mock.Anything, taskID).Return(stored(), nil)

		_, err := env.svc.UpdateTask(ctx, "a@x.com", taskID, nil,
			models.WithStatus("Archived"))

		require.Error(t, err)
		businessErr, ok := err.(*service.BusinessError)
		require.True(t, ok)
		assert.Equal(t, service.CodeValidationError, businessErr.Code)
	})

	t.Run("error - task not found", func(t *testing.T) {
		env := newTestEnv()
		env.tasks.On("GetByID", mock.Anything, taskID).Return(nil, repo.ErrNotFound)

		_, err := env.svc.UpdateTask(ctx, "a@x.com", taskID, nil)

		require.Error(t, err)
		businessErr, ok := err.(*service.BusinessError)
		require.True(t, ok)
		assert.Equal(t, service.CodeNotFound, businessErr.Code)
	})
}

// TestTaskService_UpdateTask_LastWriteWins демонстрирует незащищённую гонку:
// два обновления без lastFetched оба проходят
func TestTaskService_UpdateTask_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	env := newTestEnv()
	stored := models.Task{
		ID:           taskID,
		Title:        "Original",
		Priority:     models.PriorityLow,
		Status:       models.StatusTodo,
		LastModified: time.Now().Add(-time.Minute),
	}
	firstRead, secondRead := stored, stored

	env.tasks.On("GetByID", mock.Anything, taskID).Return(&firstRead, nil).Once()
	env.tasks.On("GetByID", mock.Anything, taskID).Return(&secondRead, nil).Once()
	env.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)
	env.logs.On("Create", mock.Anything, mock.Anything).Return(nil)
	env.tasks.On("GetAll", mock.Anything).Return([]*models.Task{}, nil)
	env.users.On("GetAll", mock.Anything).Return([]*models.User{}, nil)

	first, err := env.svc.UpdateTask(ctx, "a@x.com", taskID, nil, models.WithTitle("First"))
	require.NoError(t, err)

	second, err := env.svc.UpdateTask(ctx, "b@x.com", taskID, nil, models.WithTitle("Second"))
	require.NoError(t, err)

	assert.Equal(t, "First", first.Title)
	assert.Equal(t, "Second", second.Title)
	env.tasks.AssertNumberOfCalls(t, "Update", 2)
}

// TestTaskService_DeleteTask тестирует удаление
func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	t.Run("success", func(t *testing.T) {
		env := newTestEnv()
		task := &models.Task{ID: taskID, Title: "Doomed", Priority: models.PriorityLow, Status: models.StatusTodo}

		var logged []*models.LogEntry
		env.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
		env.tasks.On("Delete", mock.Anything, taskID).Return(nil)
		env.logs.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			logged = append(logged, args.Get(1).(*models.LogEntry))
		}).Return(nil)
		env.tasks.On("GetAll", mock.Anything).Return([]*models.Task{}, nil)
		env.users.On("GetAll", mock.Anything).Return([]*models.User{}, nil)

		err := env.svc.DeleteTask(ctx, "a@x.com", taskID)
		require.NoError(t, err)

		require.Len(t, logged, 1)
		assert.Equal(t, "Deleted task: Doomed", logged[0].Action)
	})

	t.Run("error - not found", func(t *testing.T) {
		env := newTestEnv()
		env.tasks.On("GetByID", mock.Anything, taskID).Return(nil, repo.ErrNotFound)

		err := env.svc.DeleteTask(ctx, "a@x.com", taskID)

		require.Error(t, err)
		businessErr, ok := err.(*service.BusinessError)
		require.True(t, ok)
		assert.Equal(t, service.CodeNotFound, businessErr.Code)
	})
}

// TestTaskService_SmartAssign тестирует выбор наименее загруженного пользователя
func TestTaskService_SmartAssign(t *testing.T) {
	ctx := context.Background()
	taskID := uuid.New()

	userA := &models.User{ID: uuid.New(), Email: "a@x.com"}
	userB := &models.User{ID: uuid.New(), Email: "b@x.com"}
	userC := &models.User{ID: uuid.New(), Email: "c@x.com"}

	t.Run("success - least loaded wins", func(t *testing.T) {
		env := newTestEnv()
		task := &models.Task{ID: taskID, Title: "Unowned", Priority: models.PriorityLow, Status: models.StatusTodo}

		env.users.On("GetAll", mock.Anything).Return([]*models.User{userA, userB, userC}, nil)
		env.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
		env.tasks.On("CountActiveByAssignee", mock.Anything, userA.ID).Return(3, nil)
		env.tasks.On("CountActiveByAssignee", mock.Anything, userB.ID).Return(1, nil)
		env.tasks.On("CountActiveByAssignee", mock.Anything, userC.ID).Return(2, nil)
		env.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)

		var logged []*models.LogEntry
		env.logs.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			logged = append(logged, args.Get(1).(*models.LogEntry))
		}).Return(nil)
		env.tasks.On("GetAll", mock.Anything).Return([]*models.Task{}, nil)

		assigned, err := env.svc.SmartAssign(ctx, "a@x.com", taskID)
		require.NoError(t, err)
		require.NotNil(t, assigned.AssignedTo)
		assert.Equal(t, userB.ID, *assigned.AssignedTo)

		require.Len(t, logged, 1)
		assert.Equal(t, "Smart assigned task: Unowned to b@x.com", logged[0].Action)
	})

	t.Run("tie - first user in enumeration order wins", func(t *testing.T) {
		env := newTestEnv()
		task := &models.Task{ID: taskID, Title: "Unowned", Priority: models.PriorityLow, Status: models.StatusTodo}

		env.users.On("GetAll", mock.Anything).Return([]*models.User{userA, userB}, nil)
		env.tasks.On("GetByID", mock.Anything, taskID).Return(task, nil)
		env.tasks.On("CountActiveByAssignee", mock.Anything, userA.ID).Return(1, nil)
		env.tasks.On("CountActiveByAssignee", mock.Anything, userB.ID).Return(1, nil)
		env.tasks.On("Update", mock.Anything, mock.Anything).Return(nil)
		env.logs.On("Create", mock.Anything, mock.Anything).Return(nil)
		env.tasks.On("GetAll", mock.Anything).Return([]*models.Task{}, nil)

		assigned, err := env.svc.SmartAssign(ctx, "a@x.com", taskID)
		require.NoError(t, err)
		assert.Equal(t, userA.ID, *assigned.AssignedTo)
	})

	t.Run("error - no users", func(t *testing.T) {
		env := newTestEnv()
		env.users.On("GetAll", mock.Anything).Return([]*models.User{}, nil)

		_, err := env.svc.SmartAssign(ctx, "a@x.com", taskID)

		require.Error(t, err)
		businessErr, ok := err.(*service.BusinessError)
		require.True(t, ok)
		assert.Equal(t, service.CodeNotFound, businessErr.Code)
		assert.Equal(t, "No users available", businessErr.Message)
	})

	t.Run("error - task not found", func(t *testing.T) {
		env := newTestEnv()
		env.users.On("GetAll", mock.Anything).Return([]*models.User{userA}, nil)
		env.tasks.On("GetByID", mock.Anything, taskID).Return(nil, repo.ErrNotFound)

		_, err := env.svc.SmartAssign(ctx, "a@x.com", taskID)

		require.Error(t, err)
		businessErr, ok := err.(*service.BusinessError)
		require.True(t, ok)
		assert.Equal(t, service.CodeNotFound, businessErr.Code)
	})
}

// TestTaskService_GetBoard тестирует группировку по статусам
func TestTaskService_GetBoard(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	assignee := &models.User{ID: uuid.New(), Email: "a@x.com"}
	tasks := []*models.Task{
		{ID: uuid.New(), Title: "one", Status: models.StatusTodo, Priority: models.PriorityLow},
		{ID: uuid.New(), Title: "two", Status: models.StatusInProgress, Priority: models.PriorityLow, AssignedTo: &assignee.ID},
		{ID: uuid.New(), Title: "three", Status: models.StatusDone, Priority: models.PriorityLow},
		// задача с мусорным статусом выпадает из среза, но не роняет вызов
		{ID: uuid.New(), Title: "broken", Status: "Archived", Priority: models.PriorityLow},
	}

	env.tasks.On("GetAll", mock.Anything).Return(tasks, nil)
	env.users.On("GetAll", mock.Anything).Return([]*models.User{assignee}, nil)

	board, err := env.svc.GetBoard(ctx)
	require.NoError(t, err)

	assert.Len(t, board.Todo, 1)
	assert.Len(t, board.InProgress, 1)
	assert.Len(t, board.Done, 1)

	require.NotNil(t, board.InProgress[0].AssignedUser)
	assert.Equal(t, "a@x.com", *board.InProgress[0].AssignedUser)
	assert.Nil(t, board.Todo[0].AssignedUser)
}
