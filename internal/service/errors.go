package service

import "fmt"

const (
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeInternal        = "INTERNAL_ERROR"
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

// NewNotFound - и для отсутствующих задач, и для чужих
func NewNotFound(resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s не найден(а)", resource),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewInvalidArgument(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeInvalidArgument,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewUnauthorized() *BusinessError {
	return &BusinessError{
		Code:    CodeUnauthorized,
		Message: "Не авторизован",
	}
}

// NewInternal хранит err только для логов, в Message и Details её нет
func NewInternal(err error) *BusinessError {
	return &BusinessError{
		Code:    CodeInternal,
		Message: "Внутренняя ошибка сервера",
		Err:     err,
	}
}
