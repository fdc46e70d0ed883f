// Package quiz checks answers for the lesson exercise widgets and builds
// multiple-choice drills from lesson vocabulary.
package quiz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/example/sinhala/internal/lessonparse"
	"github.com/example/sinhala/pkg/models"
)

// ExerciseType represents the different exercise widgets
type ExerciseType string

const (
	MultipleChoice ExerciseType = "multiple_choice"
	PictureChoice  ExerciseType = "picture_choice"
	FillBlank      ExerciseType = "fill_blank"
	WordBank       ExerciseType = "word_bank"
	Matching       ExerciseType = "matching"
	Dialogue       ExerciseType = "dialogue"
)

const correctMessage = "Correct!"

// ErrUnsupportedExercise is returned for exercise types the checker does not know
var ErrUnsupportedExercise = errors.New("unsupported exercise type")

// Answer is what a widget submits; which field is used depends on the exercise type
type Answer struct {
	Choice string            `json:"choice,omitempty"` // multiple_choice, picture_choice
	Text   string            `json:"text,omitempty"`   // fill_blank
	Tokens []string          `json:"tokens,omitempty"` // word_bank, in the order placed
	Pairs  map[string]string `json:"pairs,omitempty"`  // matching
	Turns  []string          `json:"turns,omitempty"`  // dialogue, one reply per turn
}

// Feedback is the checker's verdict
type Feedback struct {
	Correct  bool   `json:"correct"`
	Expected string `json:"expected,omitempty"`
	Message  string `json:"message"`
}

func wrong(expected string) Feedback {
	return Feedback{Expected: expected, Message: "Not quite. The answer is: " + expected}
}

func right() Feedback {
	return Feedback{Correct: true, Message: correctMessage}
}

// Check compares the submitted answer with the exercise's answer set
func Check(ex *models.Exercise, a Answer) (Feedback, error) {
	switch ExerciseType(ex.Type) {
	case MultipleChoice, PictureChoice:
		return checkAny(ex.Answers, a.Choice), nil
	case FillBlank:
		return checkAny(ex.Answers, a.Text), nil
	case WordBank:
		return checkAny(ex.Answers, strings.Join(a.Tokens, " ")), nil
	case Matching:
		return checkPairs(ex.Pairs, a.Pairs), nil
	case Dialogue:
		return checkDialogue(ex.Turns, a.Turns), nil
	default:
		return Feedback{}, fmt.Errorf("%q: %w", ex.Type, ErrUnsupportedExercise)
	}
}

// Equal compares two answers: NFC, collapsed whitespace, case-insensitive, trailing punctuation ignored
func Equal(a, b string) bool {
	return lessonparse.NormalizeBase(a) == lessonparse.NormalizeBase(b)
}

func checkAny(answers []string, given string) Feedback {
	for _, ans := range answers {
		if Equal(ans, given) {
			return right()
		}
	}
	if len(answers) == 0 {
		return wrong("")
	}
	return wrong(answers[0])
}

func checkPairs(expected, given map[string]string) Feedback {
	var parts []string
	for k, v := range expected {
		parts = append(parts, k+" = "+v)
	}
	sort.Strings(parts)
	exp := strings.Join(parts, ", ")

	if len(given) != len(expected) {
		return wrong(exp)
	}
	// Каждая пара из ответа должна закрыть свою, ещё не совпавшую пару
	matched := make(map[string]bool, len(expected))
	for k, v := range given {
		key, ok := lookupKey(expected, k)
		if !ok || matched[key] || !Equal(expected[key], v) {
			return wrong(exp)
		}
		matched[key] = true
	}
	if len(matched) != len(expected) {
		return wrong(exp)
	}
	return right()
}

// lookupKey returns the expected key a submitted key refers to
func lookupKey(m map[string]string, key string) (string, bool) {
	if _, ok := m[key]; ok {
		return key, true
	}
	for k := range m {
		if Equal(k, key) {
			return k, true
		}
	}
	return "", false
}

func checkDialogue(turns []models.DialogueTurn, replies []string) Feedback {
	var expected []string
	for _, t := range turns {
		if t.Answer != "" {
			expected = append(expected, t.Answer)
		}
	}
	exp := strings.Join(expected, " / ")
	if len(replies) != len(expected) {
		return wrong(exp)
	}
	for i := range expected {
		if !Equal(expected[i], replies[i]) {
			return wrong(exp)
		}
	}
	return right()
}
