package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/example/sinhala/internal/content"
	"github.com/example/sinhala/internal/database"
	"github.com/example/sinhala/internal/lessonparse"
	"github.com/example/sinhala/internal/quiz"
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse is the envelope of successful responses
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ErrorResponse is the envelope of failed responses
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func success(c *fiber.Ctx, status int, data interface{}, meta ...interface{}) error {
	response := SuccessResponse{Success: true, Data: data}
	if len(meta) > 0 {
		response.Meta = meta[0]
	}
	return c.Status(status).JSON(response)
}

func ok(c *fiber.Ctx, data interface{}, meta ...interface{}) error {
	return success(c, fiber.StatusOK, data, meta...)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return fail(c, fiber.StatusBadRequest, message)
}

// handleError maps domain errors to status codes
func handleError(c *fiber.Ctx, err error) error {
	var parseErr *lessonparse.ParseError
	switch {
	case errors.Is(err, content.ErrNotFound), errors.Is(err, database.ErrNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, content.ErrInvalidLessonID),
		errors.Is(err, database.ErrUnknownPreference),
		errors.Is(err, quiz.ErrUnsupportedExercise):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.As(err, &parseErr):
		log.Printf("Warning: %v", err)
		return fail(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
		return fail(c, fiber.StatusInternalServerError, "internal error")
	}
}

// errorHandler renders errors returned by fiber itself (unknown routes, bad bodies)
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fail(c, fe.Code, fe.Message)
	}
	return handleError(c, err)
}
