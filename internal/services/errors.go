package services

import (
	"errors"
	"fmt"

	"gepay-web/internal/models"
)

var (
	ErrUnauthenticated   = errors.New("authentication required")
	ErrValidation        = errors.New("validation failed")
	ErrSubmissionFailed  = errors.New("submission failed")
	ErrSubmissionBusy    = errors.New("previous submission still in progress")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrInvalidAssertion  = errors.New("invalid telegram assertion")
	ErrInvalidTransition = errors.New("invalid auth state transition")
)

// ValidationError reports a form field that failed local validation. No remote
// call is made when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func newValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotificationFor converts a service error into the toast shown to the user.
func NotificationFor(err error) *models.Notification {
	var validationErr *ValidationError

	switch {
	case err == nil:
		return nil
	case errors.As(err, &validationErr):
		return models.NewNotification(models.NotificationValidation, "Заполните все поля", validationErr.Message)
	case errors.Is(err, ErrUnauthenticated):
		return models.NewNotification(models.NotificationInfo, "Требуется вход", "Войдите через Telegram, чтобы продолжить")
	case errors.Is(err, ErrSubmissionBusy):
		return models.NewNotification(models.NotificationInfo, "Заявка уже обрабатывается", "Дождитесь завершения предыдущей заявки")
	case errors.Is(err, ErrInvalidAssertion), errors.Is(err, ErrAuthFailed):
		return models.NewNotification(models.NotificationError, "Не удалось войти", "Попробуйте авторизоваться через Telegram ещё раз")
	default:
		return models.NewNotification(models.NotificationError, "Ошибка", "Не удалось выполнить операцию. Попробуйте позже.")
	}
}
