package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// NullableUUID отличает явный null в JSON от отсутствия поля:
// null означает "снять назначение", отсутствие — "не трогать".
type NullableUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (n *NullableUUID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// UpdateTaskRequest — частичное обновление: отсутствующие поля не трогаются.
// lastFetched — момент последнего чтения клиентом для проверки
// оптимистичной конкуренции.
type UpdateTaskRequest struct {
	Title        *string      `json:"title,omitempty"`
	Description  *string      `json:"description,omitempty"`
	Priority     *string      `json:"priority,omitempty"`
	Status       *string      `json:"status,omitempty"`
	AssignedUser NullableUUID `json:"assignedUser"`
	LastFetched  *time.Time   `json:"lastFetched,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
