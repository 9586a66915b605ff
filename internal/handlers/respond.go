package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gepay-web/internal/services"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, services.ErrAuthFailed),
		errors.Is(err, services.ErrInvalidAssertion):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSubmissionBusy):
		return http.StatusConflict
	case errors.Is(err, services.ErrSubmissionFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func invalidField(err error) string {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Field
	}
	return ""
}

func respondError(c *gin.Context, err error) {
	note := services.NotificationFor(err)
	body := gin.H{
		"error":        note.Title,
		"notification": note,
	}
	if field := invalidField(err); field != "" {
		body["error"] = note.Message
		body["field"] = field
	}
	c.JSON(statusFor(err), body)
}
