package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"taskBoard/internal/auth"
	"taskBoard/internal/broadcast"
	"taskBoard/internal/config"
	"taskBoard/internal/handlers"
	"taskBoard/internal/logger"
	mw "taskBoard/internal/middleware"
	"taskBoard/internal/repository/inmemory"
	"taskBoard/internal/repository/postgres"
	"taskBoard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type App struct {
	config    *config.Config
	server    *http.Server
	hub       *broadcast.Hub
	shutdowns []func() // функции для graceful shutdown, в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	var users service.UserRepository
	var tasks service.TaskRepository
	var logs service.LogRepository

	switch a.config.Repository.Type {
	case "postgres":
		if err := a.runMigrations(); err != nil {
			return err
		}

		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к БД: %w", err)
		}
		a.shutdowns = append(a.shutdowns, storage.Close)

		users = storage.Users()
		tasks = storage.Tasks()
		logs = storage.Logs()
	default:
		users = inmemory.NewUserStorage()
		tasks = inmemory.NewTaskStorage()
		logs = inmemory.NewLogStorage()
	}

	tokens, err := auth.NewTokenManager(a.config.Auth.JWTSecret, a.config.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("инициализация токенов: %w", err)
	}

	a.hub = broadcast.NewHub(a.config.Broadcast.SendBuffer)
	go a.hub.Run()
	a.shutdowns = append(a.shutdowns, a.hub.Stop)

	authService := service.NewAuthService(users, tokens)
	taskService := service.NewTaskService(tasks, users, logs, a.hub)
	a.hub.OnResync(taskService.BroadcastSnapshot)

	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router(&authService, &taskService, tokens),
	}

	return nil
}

func (a *App) router(authService handlers.AuthService, taskService handlers.TaskService, tokens *auth.TokenManager) http.Handler {
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	authMW := mw.NewAuthMiddleware(tokens)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   a.config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(mw.RateLimit(100))

	r.Get("/health", taskHandler.HealthCheck)
	r.Get("/ws", a.hub.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.GetTasks)
				r.Post("/", taskHandler.PostTask)

				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", taskHandler.UpdateTask)
					r.Delete("/", taskHandler.DeleteTask)
					r.Post("/smart-assign", taskHandler.SmartAssign)
				})
			})

			r.Get("/logs", taskHandler.GetLogs)
		})
	})

	return r
}

func (a *App) runMigrations() error {
	// драйвер golang-migrate для pgx/v5 зарегистрирован под схемой pgx5
	url := strings.Replace(a.config.Database.URL, "postgres://", "pgx5://", 1)

	m, err := migrate.New("file://"+a.config.Database.MigrationsPath, url)
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Миграции применены")
	return nil
}

// Run блокируется до отмены контекста, затем гасит сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Сервер запущен: " + a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("работа сервера: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", err)
	}

	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	return nil
}
