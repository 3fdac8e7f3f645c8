package service

import "fmt"

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidationError = "VALIDATION_ERROR"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodeVersionConflict = "VERSION_CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func NewNotFound(message string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: message,
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidationError,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewAlreadyExists(message string) *BusinessError {
	return &BusinessError{
		Code:    CodeAlreadyExists,
		Message: message,
	}
}

// NewVersionConflict несёт актуальное состояние задачи в Details,
// чтобы клиент мог разрешить конфликт на своей стороне.
func NewVersionConflict(message string, currentTask any) *BusinessError {
	return &BusinessError{
		Code:    CodeVersionConflict,
		Message: message,
		Details: map[string]any{
			"currentTask": currentTask,
		},
	}
}

func NewUnauthorized(message string) *BusinessError {
	return &BusinessError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}
