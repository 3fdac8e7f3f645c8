package handlers

import (
	"net/http"

	"taskBoard/internal/logger"
	"taskBoard/internal/service"

	"go.uber.org/zap"
)

// handleBusinessError переводит ошибку бизнес-логики в HTTP-ответ.
// Возвращает false, если ошибка не бизнесовая и её должен обработать вызывающий.
func handleBusinessError(w http.ResponseWriter, err error) bool {
	businessErr, ok := err.(*service.BusinessError)
	if !ok {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	if businessErr.Code == service.CodeVersionConflict {
		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Message),
			toPayload("currentTask", businessErr.Details["currentTask"]),
		)
		return true
	}

	responseWithError(w, statusCode, businessErr.Message)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidationError, service.CodeAlreadyExists:
		return http.StatusBadRequest
	case service.CodeVersionConflict:
		return http.StatusConflict
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
