package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/services"
)

// statusFor maps the auth error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInfrastructure):
		return http.StatusInternalServerError
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidCode), errors.Is(err, services.ErrExpiredCode):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes err as {"error": message}. Server errors are logged and
// answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		slog.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "Server error"})
		return
	}
	c.JSON(status, gin.H{"error": publicMessage(err)})
}

// publicMessage strips the category markers the services wrap their errors in.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrEmailNotVerified):
		return "Email not verified"
	case errors.Is(err, services.ErrInvalidCredentials):
		return "Invalid credentials"
	}
	msg := err.Error()
	msg = strings.TrimPrefix(msg, services.ErrValidation.Error()+": ")
	msg = strings.TrimSuffix(msg, ": "+services.ErrConflict.Error())
	return msg
}

// serverError logs a database failure and answers 500.
func serverError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	slog.ErrorContext(c.Request.Context(), msg, "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
