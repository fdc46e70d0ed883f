package server

import (
	"errors"
	"strconv"

	"github.com/example/sinhala/internal/spaced_repetition"
	"github.com/example/sinhala/internal/tracing"
	"github.com/example/sinhala/pkg/models"
	"github.com/gofiber/fiber/v2"
)

const (
	defaultNextLimit = 5
	maxNextLimit     = 50
)

// characterView is a character together with the learner's record
type characterView struct {
	models.Character
	Progress *models.CharacterProgress `json:"progress,omitempty"`
}

type setView struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Characters []characterView `json:"characters"`
}

func (s *Server) listCharacters(c *fiber.Ctx) error {
	byChar := map[string]models.CharacterProgress{}
	learner := learnerID(c)
	if learner != "" {
		progress, err := s.deps.Progress.ListByLearner(c.UserContext(), learner)
		if err != nil {
			return handleError(c, err)
		}
		for _, p := range progress {
			byChar[p.CharID] = p
		}
	}

	sets := s.deps.Content.CharacterSets()
	views := make([]setView, 0, len(sets))
	for _, set := range sets {
		view := setView{ID: set.ID, Title: set.Title, Characters: make([]characterView, 0, len(set.Characters))}
		for _, ch := range set.Characters {
			cv := characterView{Character: ch}
			if learner != "" {
				if p, found := byChar[ch.ID]; found {
					cv.Progress = &p
				} else {
					cv.Progress = models.NewCharacterProgress(learner, ch.ID)
				}
			}
			view.Characters = append(view.Characters, cv)
		}
		views = append(views, view)
	}
	return ok(c, views)
}

func (s *Server) nextCharacters(c *fiber.Ctx) error {
	limit := defaultNextLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return badRequest(c, "limit must be a positive integer")
		}
		limit = n
	}
	if limit > maxNextLimit {
		limit = maxNextLimit
	}

	progress, err := s.deps.Progress.ListByLearner(c.UserContext(), learnerID(c))
	if err != nil {
		return handleError(c, err)
	}
	ids := spaced_repetition.NextCharacters(progress, s.deps.Content.CharacterIDs(), limit)

	chars := make([]models.Character, 0, len(ids))
	for _, id := range ids {
		ch, err := s.deps.Content.Character(id)
		if err != nil {
			return handleError(c, err)
		}
		chars = append(chars, ch)
	}
	return ok(c, chars)
}

func (s *Server) getProgress(c *fiber.Ctx) error {
	ch, err := s.deps.Content.Character(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	progress, err := s.deps.Progress.GetOrNew(c.UserContext(), learnerID(c), ch.ID)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, progress)
}

type answerRequest struct {
	Correct *bool `json:"correct"`
}

func (s *Server) answerCharacter(c *fiber.Ctx) error {
	ch, err := s.deps.Content.Character(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	var req answerRequest
	if err := c.BodyParser(&req); err != nil || req.Correct == nil {
		return badRequest(c, "body must be {\"correct\": true|false}")
	}

	progress, err := s.recordAnswer(c, learnerID(c), ch.ID, *req.Correct)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, progress)
}

func (s *Server) traceCharacter(c *fiber.Ctx) error {
	ch, err := s.deps.Content.Character(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	var attempt tracing.Attempt
	if err := c.BodyParser(&attempt); err != nil {
		return badRequest(c, "invalid trace body")
	}

	result, err := s.deps.Validator.Validate(c.UserContext(), ch.Glyph, attempt)
	if errors.Is(err, tracing.ErrInvalidCanvas) {
		return badRequest(c, err.Error())
	}
	if errors.Is(err, tracing.ErrEmptyReference) {
		return fail(c, fiber.StatusUnprocessableEntity, "glyph cannot be rendered with the configured font")
	}
	if err != nil {
		return handleError(c, err)
	}

	data := fiber.Map{"result": result}
	// Пустая попытка не влияет на прогресс
	if !result.Empty() {
		progress, err := s.recordAnswer(c, learnerID(c), ch.ID, result.Accepted)
		if err != nil {
			return handleError(c, err)
		}
		data["progress"] = progress
	}
	return ok(c, data)
}

func (s *Server) resetProgress(c *fiber.Ctx) error {
	ch, err := s.deps.Content.Character(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	learner := learnerID(c)
	if err := s.deps.Progress.Reset(c.UserContext(), learner, ch.ID); err != nil {
		return handleError(c, err)
	}
	return ok(c, models.NewCharacterProgress(learner, ch.ID))
}

// recordAnswer applies one answer to the learner's record and stores it
func (s *Server) recordAnswer(c *fiber.Ctx, learner, charID string, correct bool) (*models.CharacterProgress, error) {
	now := s.deps.Now()
	return s.deps.Progress.Apply(c.UserContext(), learner, charID, func(p *models.CharacterProgress) {
		spaced_repetition.UpdateScore(p, correct, now)
	})
}
