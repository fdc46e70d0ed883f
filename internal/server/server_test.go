package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/sinhala/internal/content"
	"github.com/example/sinhala/internal/database"
	"github.com/example/sinhala/internal/tracing"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLesson = `---
title: Greetings
vocab:
  - { si: "ආයුබෝවන්", en: "hello" }
  - { si: "ඔව්", en: "yes" }
wordbank_prompts:
  - { prompt: "Hello, yes", answer: "ආයුබෝවන් ඔව්", distractors: [කොහොමද] }
exercises:
  - id: pick-hello
    type: multiple_choice
    options: [ආයුබෝවන්, ඔව්]
    answers: [ආයුබෝවන්]
    char: a
  - id: blank
    type: fill_blank
    sentence: "_______ means yes"
    answers: [ඔව්]
---
# Greetings
`

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func writeFile(t *testing.T, dir, name, data string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func setupServer(t *testing.T) *Server {
	t.Helper()

	require.NoError(t, database.Connect(database.TypeSQLite, filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(func() { database.Close() })

	dir := t.TempDir()
	writeFile(t, dir, content.CourseFile, `{"title": "Sinhala", "units": [{"id": "u1", "title": "Unit 1", "lessons": [{"id": "greetings", "title": "Greetings"}]}]}`)
	writeFile(t, dir, content.CharactersFile, `{"sets": [{"id": "latin", "title": "Latin", "characters": [
		{"id": "a", "glyph": "I", "romanization": "i"},
		{"id": "b", "glyph": "L", "romanization": "l"},
		{"id": "c", "glyph": "T", "romanization": "t"}
	]}]}`)
	writeFile(t, dir, content.LearnFile, `{"sections": [{"id": "first", "title": "First", "characters": ["a", "b"]}]}`)
	writeFile(t, dir, "lessons/greetings.md", testLesson)
	writeFile(t, dir, "lessons/broken.md", "---\ntitle: [unclosed\n---\n")

	store, err := content.NewStore(dir)
	require.NoError(t, err)

	f, err := tracing.LoadFont("")
	require.NoError(t, err)

	static := t.TempDir()
	writeFile(t, static, "index.html", "<html>app</html>")
	writeFile(t, static, "app.js", "console.log(1)")

	return New(Deps{
		Content:     store,
		Validator:   tracing.NewValidator(f, tracing.DefaultConfig()),
		Progress:    database.NewCharacterProgressRepository(),
		Preferences: database.NewPreferenceRepository(),
		Results:     database.NewExerciseResultRepository(),
		StaticDir:   static,
		Logger:      NewLogger(io.Discard),
		Now:         func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
}

func doRequest(t *testing.T, s *Server, method, path, learner, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if learner != "" {
		req.Header.Set(LearnerHeader, learner)
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Data = raw
	}
	return resp.StatusCode, env
}

func decode(t *testing.T, raw json.RawMessage, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v), string(raw))
}

func TestHealthAndLearner(t *testing.T) {
	s := setupServer(t)

	status, env := doRequest(t, s, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = doRequest(t, s, http.MethodPost, "/api/learners", "", "")
	assert.Equal(t, http.StatusCreated, status)
	var learner struct {
		LearnerID string `json:"learner_id"`
	}
	decode(t, env.Data, &learner)
	assert.Len(t, learner.LearnerID, 36)
}

func TestCourseAndLesson(t *testing.T) {
	s := setupServer(t)

	status, env := doRequest(t, s, http.MethodGet, "/api/course", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Unit 1")

	status, env = doRequest(t, s, http.MethodGet, "/api/lessons/greetings", "", "")
	assert.Equal(t, http.StatusOK, status)
	var lesson struct {
		Title     string `json:"title"`
		Exercises []struct {
			ID      string   `json:"id"`
			Answers []string `json:"answers"`
		} `json:"exercises"`
	}
	decode(t, env.Data, &lesson)
	assert.Equal(t, "Greetings", lesson.Title)
	require.Len(t, lesson.Exercises, 3)
	assert.Nil(t, lesson.Exercises[0].Answers, "answers must not leak to the client")
	assert.NotContains(t, string(env.Data), `"answer"`)
	assert.NotContains(t, string(env.Data), "ආයුබෝවන් ඔව්")
	assert.Contains(t, string(env.Data), `"prompt":"Hello, yes"`)

	status, _ = doRequest(t, s, http.MethodGet, "/api/lessons/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, s, http.MethodGet, "/api/lessons/bad.id", "", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = doRequest(t, s, http.MethodGet, "/api/lessons/broken", "", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "broken")
}

func TestTranslate(t *testing.T) {
	s := setupServer(t)

	status, env := doRequest(t, s, http.MethodGet, "/api/lessons/greetings/translate?to=target&text=Hello", "", "")
	assert.Equal(t, http.StatusOK, status)
	var res struct {
		Translation string `json:"translation"`
		Found       bool   `json:"found"`
	}
	decode(t, env.Data, &res)
	assert.True(t, res.Found)
	assert.Equal(t, "ආයුබෝවන්", res.Translation)

	status, env = doRequest(t, s, http.MethodGet, "/api/lessons/greetings/translate?to=base&text=%E0%B6%94%E0%B7%80%E0%B7%8A", "", "")
	assert.Equal(t, http.StatusOK, status)
	decode(t, env.Data, &res)
	assert.Equal(t, "yes", res.Translation)

	status, _ = doRequest(t, s, http.MethodGet, "/api/lessons/greetings/translate?to=klingon&text=x", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doRequest(t, s, http.MethodGet, "/api/lessons/greetings/translate", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCheckExercise(t *testing.T) {
	s := setupServer(t)
	path := "/api/lessons/greetings/exercises/pick-hello/check"

	status, _ := doRequest(t, s, http.MethodPost, path, "", `{"choice": "ආයුබෝවන්"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := doRequest(t, s, http.MethodPost, path, "l1", `{"choice": "ආයුබෝවන්"}`)
	assert.Equal(t, http.StatusOK, status)
	var res struct {
		Feedback struct {
			Correct bool `json:"correct"`
		} `json:"feedback"`
		Progress struct {
			Strength int `json:"strength"`
		} `json:"progress"`
	}
	decode(t, env.Data, &res)
	assert.True(t, res.Feedback.Correct)
	assert.Equal(t, 15, res.Progress.Strength)

	status, env = doRequest(t, s, http.MethodPost, "/api/lessons/greetings/exercises/blank/check", "l1", `{"text": "nope"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "Not quite. The answer is: ඔව්")

	status, _ = doRequest(t, s, http.MethodPost, "/api/lessons/greetings/exercises/zzz/check", "l1", `{}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = doRequest(t, s, http.MethodPost, path, "l1", `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = doRequest(t, s, http.MethodGet, "/api/lessons/greetings", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"score": 1, "exercises": 3}`, string(env.Meta))
}

func TestCharacterProgressFlow(t *testing.T) {
	s := setupServer(t)

	status, _ := doRequest(t, s, http.MethodGet, "/api/characters/a/progress", "", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := doRequest(t, s, http.MethodGet, "/api/characters/a/progress", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"status":"new"`)

	for i := 0; i < 4; i++ {
		status, env = doRequest(t, s, http.MethodPost, "/api/characters/a/answer", "l1", `{"correct": true}`)
		require.Equal(t, http.StatusOK, status)
	}
	var p struct {
		Strength int    `json:"strength"`
		Status   string `json:"status"`
	}
	decode(t, env.Data, &p)
	// 15 + 15 + 15 + 20
	assert.Equal(t, 65, p.Strength)
	assert.Equal(t, "learning", p.Status)

	status, _ = doRequest(t, s, http.MethodPost, "/api/characters/a/answer", "l1", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = doRequest(t, s, http.MethodPost, "/api/characters/zz/answer", "l1", `{"correct": true}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = doRequest(t, s, http.MethodGet, "/api/characters/next?limit=2", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	var next []struct {
		ID string `json:"id"`
	}
	decode(t, env.Data, &next)
	require.Len(t, next, 2)
	assert.Equal(t, "b", next[0].ID)
	assert.Equal(t, "c", next[1].ID)

	status, _ = doRequest(t, s, http.MethodGet, "/api/characters/next?limit=x", "l1", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = doRequest(t, s, http.MethodGet, "/api/characters", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"strength":65`)

	status, env = doRequest(t, s, http.MethodGet, "/api/sections", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Meta), `"learning":1`)

	status, env = doRequest(t, s, http.MethodGet, "/api/sections/first", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"average_strength":32.5`)

	status, _ = doRequest(t, s, http.MethodGet, "/api/sections/nope", "", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, env = doRequest(t, s, http.MethodDelete, "/api/characters/a/progress", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	decode(t, env.Data, &p)
	assert.Equal(t, 0, p.Strength)
}

func TestCharacterAnswersInParallel(t *testing.T) {
	s := setupServer(t)

	const answers = 20
	var wg sync.WaitGroup
	codes := make(chan int, answers)
	for i := 0; i < answers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/api/characters/a/answer", strings.NewReader(`{"correct": true}`))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set(LearnerHeader, "l1")
			resp, err := s.App().Test(req, -1)
			if err != nil {
				codes <- 0
				return
			}
			resp.Body.Close()
			codes <- resp.StatusCode
		}()
	}
	wg.Wait()
	close(codes)
	for code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}

	status, env := doRequest(t, s, http.MethodGet, "/api/characters/a/progress", "l1", "")
	require.Equal(t, http.StatusOK, status)
	var p struct {
		Attempts int `json:"attempts"`
		Correct  int `json:"correct"`
		Strength int `json:"strength"`
	}
	decode(t, env.Data, &p)
	assert.Equal(t, answers, p.Attempts)
	assert.Equal(t, answers, p.Correct)
	assert.Equal(t, 100, p.Strength)
}

func TestTraceCharacter(t *testing.T) {
	s := setupServer(t)

	status, env := doRequest(t, s, http.MethodPost, "/api/characters/a/trace", "l1", `{"width": 200, "height": 200, "strokes": []}`)
	assert.Equal(t, http.StatusOK, status)
	var res struct {
		Result struct {
			Accepted bool   `json:"accepted"`
			Feedback string `json:"feedback"`
		} `json:"result"`
		Progress *struct{} `json:"progress"`
	}
	decode(t, env.Data, &res)
	assert.False(t, res.Result.Accepted)
	assert.Equal(t, tracing.FeedbackEmpty, res.Result.Feedback)
	assert.Nil(t, res.Progress)

	status, env = doRequest(t, s, http.MethodPost, "/api/characters/a/trace", "l1",
		`{"width": 200, "height": 200, "strokes": [[{"x": 5, "y": 5}, {"x": 20, "y": 5}]]}`)
	assert.Equal(t, http.StatusOK, status)
	decode(t, env.Data, &res)
	assert.False(t, res.Result.Accepted)
	assert.NotNil(t, res.Progress)

	status, _ = doRequest(t, s, http.MethodPost, "/api/characters/a/trace", "l1", `{"width": 0, "height": 200}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = doRequest(t, s, http.MethodPost, "/api/characters/a/trace", "l1",
		`{"width": 200, "height": 200, "strokes": [[{"x": 5, "y": 5}, {"x": 1e39, "y": 5}]]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
}

func TestPreferences(t *testing.T) {
	s := setupServer(t)

	status, _ := doRequest(t, s, http.MethodGet, "/api/preferences/theme", "l1", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, env := doRequest(t, s, http.MethodPut, "/api/preferences/theme", "l1", `{"value": "dark"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "dark")

	status, env = doRequest(t, s, http.MethodGet, "/api/preferences/theme", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "dark")

	status, _ = doRequest(t, s, http.MethodPut, "/api/preferences/designer%3Apositions%3Av1", "l1", `{"value": "{}"}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, s, http.MethodPut, "/api/preferences/nonsense", "l1", `{"value": "x"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = doRequest(t, s, http.MethodGet, "/api/preferences", "l1", "")
	assert.Equal(t, http.StatusOK, status)
	var prefs []struct {
		Key string `json:"key"`
	}
	decode(t, env.Data, &prefs)
	assert.Len(t, prefs, 2)
}

func TestStaticAndFallback(t *testing.T) {
	s := setupServer(t)

	status, env := doRequest(t, s, http.MethodGet, "/app.js", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "console.log(1)", string(env.Data))

	status, env = doRequest(t, s, http.MethodGet, "/learn/vowels", "", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "app")

	status, env = doRequest(t, s, http.MethodGet, "/api/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.False(t, env.Success)
}

func TestRequestLogging(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(LoggingMiddleware(NewLogger(&buf)))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	line := buf.String()
	assert.Contains(t, line, "[sinhala] ")
	assert.Contains(t, line, "GET /ping 200")
	assert.False(t, strings.HasPrefix(line, "{"), "request log is plain text")
}
