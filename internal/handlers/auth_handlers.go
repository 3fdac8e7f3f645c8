package handlers

import (
	"encoding/json"
	"net/http"

	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) AuthHandler {
	return AuthHandler{
		AuthService: authService,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if err := validate.Struct(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверные email или пароль: "+err.Error())
		return
	}

	token, err := h.AuthService.Register(r.Context(), request.Email, request.Password)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	responseWithJSON(w, http.StatusCreated, toPayload("token", token))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if err := validate.Struct(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "email и пароль обязательны")
		return
	}

	token, err := h.AuthService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err)
		responseWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("token", token))
}
