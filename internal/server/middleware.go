package server

import (
	"io"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// LearnerHeader identifies the learner on learner-scoped endpoints
const LearnerHeader = "X-Learner-ID"

const learnerKey = "learnerID"

// NewLogger returns the request logger writing plain text lines to out
func NewLogger(out io.Writer) *log.Logger {
	return log.New(out, "[sinhala] ", log.LstdFlags|log.LUTC|log.Lmsgprefix)
}

// LoggingMiddleware logs every request
func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Передаем управление следующему обработчику
		err := c.Next()

		logger.Printf("%s %s %s %d %v",
			c.IP(),
			c.Method(),
			c.Path(),
			c.Response().StatusCode(),
			time.Since(start),
		)
		return err
	}
}

// RequireLearner rejects requests without a learner id
func RequireLearner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(LearnerHeader)
		if id == "" {
			return badRequest(c, LearnerHeader+" header is required")
		}
		if len(id) > 64 {
			return badRequest(c, LearnerHeader+" header is too long")
		}
		c.Locals(learnerKey, id)
		return c.Next()
	}
}

// learnerID returns the learner of the request, or "" for anonymous requests
func learnerID(c *fiber.Ctx) string {
	if id, ok := c.Locals(learnerKey).(string); ok {
		return id
	}
	return c.Get(LearnerHeader)
}
