package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/postcraft/backend/internal/auth"
	"github.com/postcraft/backend/internal/llm"
	"github.com/postcraft/backend/internal/style"
)

const (
	signInToAnalyze  = "Please sign in to analyze your writing style."
	signInToGenerate = "Please sign in to generate content."
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, style.ErrUnauthenticated), errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, style.ErrInvalidRequest), errors.Is(err, auth.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, style.ErrBusy), errors.Is(err, auth.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, style.ErrPersist):
		return fiber.StatusInternalServerError
	case errors.Is(err, style.ErrInvalidResponse):
		return fiber.StatusBadGateway
	case errors.Is(err, llm.ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// publicMessage returns the part of err that is safe to show to the user.
// Wrapped storage and transport causes stay in the logs.
func publicMessage(err error) string {
	var vErr *style.ValidationError
	switch {
	case errors.As(err, &vErr):
		return vErr.Error()
	case errors.Is(err, style.ErrInvalidRequest), errors.Is(err, auth.ErrInvalidInput):
		return err.Error()
	case errors.Is(err, style.ErrInvalidResponse):
		return style.ErrInvalidResponse.Error()
	case errors.Is(err, style.ErrBusy):
		return style.ErrBusy.Error()
	case errors.Is(err, style.ErrPersist):
		return style.ErrPersist.Error()
	case errors.Is(err, llm.ErrUnavailable):
		return llm.ErrUnavailable.Error()
	case errors.Is(err, auth.ErrEmailTaken):
		return auth.ErrEmailTaken.Error()
	case errors.Is(err, auth.ErrInvalidCredentials):
		return auth.ErrInvalidCredentials.Error()
	case errors.Is(err, style.ErrUnauthenticated), errors.Is(err, auth.ErrUnauthenticated):
		return "authentication required"
	default:
		return "internal error"
	}
}
