package handlers

import (
	"encoding/json"
	"net/http"

	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/middleware"
	"taskBoard/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	board, err := h.TaskService.GetBoard(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	responseWithBody(w, http.StatusOK, board)
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	actor, ok := callerEmail(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	task, err := h.TaskService.CreateTask(r.Context(), actor,
		request.Title,
		request.Description,
		models.Priority(request.Priority),
		models.Status(request.Status),
	)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.respondTask(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	actor, ok := callerEmail(w, r)
	if !ok {
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	options := []models.TaskOption{}
	if request.Title != nil {
		options = append(options, models.WithTitle(*request.Title))
	}
	if request.Description != nil {
		options = append(options, models.WithDescription(*request.Description))
	}
	if request.Priority != nil {
		options = append(options, models.WithPriority(models.Priority(*request.Priority)))
	}
	if request.Status != nil {
		options = append(options, models.WithStatus(models.Status(*request.Status)))
	}
	if request.AssignedUser.Set {
		options = append(options, models.WithAssignedTo(request.AssignedUser.Value))
	}

	task, err := h.TaskService.UpdateTask(r.Context(), actor, id, request.LastFetched, options...)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.respondTask(w, r, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	actor, ok := callerEmail(w, r)
	if !ok {
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), actor, id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("message", "Task deleted"))
}

func (h *TaskHandler) SmartAssign(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	actor, ok := callerEmail(w, r)
	if !ok {
		return
	}

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	task, err := h.TaskService.SmartAssign(r.Context(), actor, id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	h.respondTask(w, r, http.StatusOK, task)
}

func (h *TaskHandler) GetLogs(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	entries, err := h.TaskService.GetRecentLogs(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	responseWithBody(w, http.StatusOK, entries)
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable, toPayload("status", "DEGRADED"))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("status", "OK"))
}

// respondTask отдаёт задачу с email назначенного пользователя.
func (h *TaskHandler) respondTask(w http.ResponseWriter, r *http.Request, code int, task *models.Task) {
	view, err := h.TaskService.ViewOf(r.Context(), task)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}
	responseWithBody(w, code, view)
}

func callerEmail(w http.ResponseWriter, r *http.Request) (string, bool) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "Authorization required")
		return "", false
	}
	return identity.Email, true
}

func taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("HTTP: Неверный id задачи", zap.String("id", raw))
		responseWithError(w, http.StatusBadRequest, "неверный id задачи")
		return uuid.Nil, false
	}
	return id, true
}
