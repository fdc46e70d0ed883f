package server

import (
	"github.com/example/sinhala/internal/lessonparse"
	"github.com/example/sinhala/internal/quiz"
	"github.com/example/sinhala/internal/spaced_repetition"
	"github.com/example/sinhala/pkg/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func (s *Server) createLearner(c *fiber.Ctx) error {
	return success(c, fiber.StatusCreated, fiber.Map{"learner_id": uuid.NewString()})
}

func (s *Server) getCourse(c *fiber.Ctx) error {
	return ok(c, s.deps.Content.Course())
}

func (s *Server) getLesson(c *fiber.Ctx) error {
	lesson, err := s.deps.Content.Lesson(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	learner := learnerID(c)
	if learner == "" {
		return ok(c, lesson)
	}
	score, err := s.deps.Results.LessonScore(c.UserContext(), learner, lesson.ID)
	if err != nil {
		return handleError(c, err)
	}
	return ok(c, lesson, fiber.Map{"score": score, "exercises": len(lesson.Exercises)})
}

func (s *Server) translate(c *fiber.Ctx) error {
	text := c.Query("text")
	if text == "" {
		return badRequest(c, "text is required")
	}
	to := c.Query("to", "base")
	if to != "base" && to != "target" {
		return badRequest(c, "to must be base or target")
	}

	lesson, err := s.deps.Content.Lesson(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}
	glossary := lessonparse.NewGlossary(lesson.Vocab)

	var (
		translation string
		found       bool
	)
	if to == "base" {
		translation, found = glossary.TranslateToBase(text)
	} else {
		translation, found = glossary.TranslateToTarget(text)
	}
	return ok(c, fiber.Map{"text": text, "translation": translation, "found": found})
}

func (s *Server) checkExercise(c *fiber.Ctx) error {
	lessonID := c.Params("id")
	lesson, err := s.deps.Content.Lesson(lessonID)
	if err != nil {
		return handleError(c, err)
	}
	ex, found := lesson.FindExercise(c.Params("exerciseId"))
	if !found {
		return fail(c, fiber.StatusNotFound, "exercise not found")
	}

	var answer quiz.Answer
	if err := c.BodyParser(&answer); err != nil {
		return badRequest(c, "invalid answer body")
	}

	feedback, err := quiz.Check(ex, answer)
	if err != nil {
		return handleError(c, err)
	}

	ctx := c.UserContext()
	learner := learnerID(c)
	result := &models.ExerciseResult{
		LearnerID:  learner,
		LessonID:   lesson.ID,
		ExerciseID: ex.ID,
		Correct:    feedback.Correct,
		AnsweredAt: s.deps.Now(),
	}
	if err := s.deps.Results.Create(ctx, result); err != nil {
		return handleError(c, err)
	}

	data := fiber.Map{"feedback": feedback}
	if ex.CharID != "" {
		progress, err := s.recordAnswer(c, learner, ex.CharID, feedback.Correct)
		if err != nil {
			return handleError(c, err)
		}
		data["progress"] = progress
	}
	return ok(c, data)
}

func (s *Server) listSections(c *fiber.Ctx) error {
	sections := s.deps.Content.Sections()
	learner := learnerID(c)
	if learner == "" {
		return ok(c, sections)
	}

	progress, err := s.deps.Progress.ListByLearner(c.UserContext(), learner)
	if err != nil {
		return handleError(c, err)
	}
	summaries := make(map[string]models.ProgressSummary, len(sections))
	for _, sec := range sections {
		summaries[sec.ID] = spaced_repetition.Summarize(progress, sec.Characters)
	}
	return ok(c, sections, fiber.Map{"progress": summaries})
}

func (s *Server) getSection(c *fiber.Ctx) error {
	section, err := s.deps.Content.Section(c.Params("id"))
	if err != nil {
		return handleError(c, err)
	}

	chars := make([]models.Character, 0, len(section.Characters))
	for _, id := range section.Characters {
		ch, err := s.deps.Content.Character(id)
		if err != nil {
			continue
		}
		chars = append(chars, ch)
	}
	data := fiber.Map{"section": section, "characters": chars}

	if learner := learnerID(c); learner != "" {
		progress, err := s.deps.Progress.ListByLearner(c.UserContext(), learner)
		if err != nil {
			return handleError(c, err)
		}
		data["progress"] = spaced_repetition.Summarize(progress, section.Characters)
	}
	return ok(c, data)
}
