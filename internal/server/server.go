// Package server exposes the course content, character progress, tracing
// validation and learner preferences over an HTTP JSON API and serves the
// browser app.
package server

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/example/sinhala/internal/content"
	"github.com/example/sinhala/internal/tracing"
	"github.com/example/sinhala/pkg/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ProgressStore persists character progress
type ProgressStore interface {
	GetOrNew(ctx context.Context, learnerID, charID string) (*models.CharacterProgress, error)
	ListByLearner(ctx context.Context, learnerID string) ([]models.CharacterProgress, error)
	Apply(ctx context.Context, learnerID, charID string, fn func(*models.CharacterProgress)) (*models.CharacterProgress, error)
	Reset(ctx context.Context, learnerID, charID string) error
}

// PreferenceStore persists learner preferences
type PreferenceStore interface {
	Get(ctx context.Context, learnerID, key string) (*models.Preference, error)
	Set(ctx context.Context, learnerID, key, value string) (*models.Preference, error)
	All(ctx context.Context, learnerID string) ([]models.Preference, error)
}

// ResultStore records checked exercises
type ResultStore interface {
	Create(ctx context.Context, result *models.ExerciseResult) error
	LessonScore(ctx context.Context, learnerID, lessonID string) (int, error)
}

// Deps are the collaborators of the HTTP handlers
type Deps struct {
	Content     *content.Store
	Validator   *tracing.Validator
	Progress    ProgressStore
	Preferences PreferenceStore
	Results     ResultStore
	StaticDir   string
	Logger      *log.Logger
	Now         func() time.Time
}

// Server is the HTTP front of the service
type Server struct {
	app  *fiber.App
	deps Deps
}

// New builds the fiber app and registers every route
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = NewLogger(os.Stdout)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	app := fiber.New(fiber.Config{
		AppName:               "sinhala",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          15 * time.Second,
	})

	s := &Server{app: app, deps: deps}
	s.setupRoutes()
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving on addr
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(LoggingMiddleware(s.deps.Logger))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, " + LearnerHeader,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	s.app.Get("/healthz", s.health)

	api := s.app.Group("/api")
	api.Post("/learners", s.createLearner)

	// Контент курса
	api.Get("/course", s.getCourse)
	api.Get("/lessons/:id", s.getLesson)
	api.Get("/lessons/:id/translate", s.translate)
	api.Post("/lessons/:id/exercises/:exerciseId/check", RequireLearner(), s.checkExercise)
	api.Get("/sections", s.listSections)
	api.Get("/sections/:id", s.getSection)

	// Прогресс по символам
	api.Get("/characters", s.listCharacters)
	api.Get("/characters/next", RequireLearner(), s.nextCharacters)
	api.Get("/characters/:id/progress", RequireLearner(), s.getProgress)
	api.Post("/characters/:id/answer", RequireLearner(), s.answerCharacter)
	api.Post("/characters/:id/trace", RequireLearner(), s.traceCharacter)
	api.Delete("/characters/:id/progress", RequireLearner(), s.resetProgress)

	// Настройки
	prefs := api.Group("/preferences", RequireLearner())
	prefs.Get("/", s.listPreferences)
	prefs.Get("/:key", s.getPreference)
	prefs.Put("/:key", s.setPreference)

	api.All("/*", func(c *fiber.Ctx) error {
		return fail(c, fiber.StatusNotFound, "no such endpoint")
	})

	s.setupStatic()
}

// setupStatic serves the browser app; unknown paths get index.html so client routing works
func (s *Server) setupStatic() {
	dir := s.deps.StaticDir
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		s.deps.Logger.Printf("Warning: static dir %s unavailable: %v", dir, err)
		return
	}

	s.app.Static("/", dir, fiber.Static{Index: "index.html"})

	index := filepath.Join(dir, "index.html")
	s.app.Get("/*", func(c *fiber.Ctx) error {
		if _, err := os.Stat(index); err != nil {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	return ok(c, fiber.Map{"status": "ok"})
}
