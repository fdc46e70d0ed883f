package lessonparse

import (
	"errors"
	"testing"

	"github.com/example/sinhala/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greetingLesson = `---
id: greetings
title: Greetings
level: 1
characters: [a, aa]
vocab:
  - { si: "ආයුබෝවන්", en: "hello", translit: "āyubōvan" }
  - sinhala: ස්තූතියි
    english: thank you
  - කොහොමද: how are you
  - "ඔව් = yes"
wordbank_prompts:
  - { prompt: "Hello, how are you?", answer: "ආයුබෝවන් කොහොමද", distractors: [ඔව්] }
exercises:
  - id: pick-hello
    type: multiple_choice
    prompt: Which word means hello?
    options: [ආයුබෝවන්, ඔව්, ස්තූතියි]
    answers: [ආයුබෝවන්]
  - type: matching
    pairs: { ඔව්: yes, ස්තූතියි: thank you }
---
# Greetings

Say hello politely.

## Practice

Try the exercises below.
`

func TestParseFrontMatter(t *testing.T) {
	lesson, err := Parse("fallback", []byte(greetingLesson))
	require.NoError(t, err)

	assert.Equal(t, "greetings", lesson.ID)
	assert.Equal(t, "Greetings", lesson.Title)
	assert.Equal(t, 1, lesson.Level)
	assert.Equal(t, []string{"a", "aa"}, lesson.Characters)

	require.Len(t, lesson.Vocab, 4)
	assert.Equal(t, models.VocabItem{Sinhala: "ආයුබෝවන්", English: "hello", Translit: "āyubōvan"}, lesson.Vocab[0])
	assert.Equal(t, "thank you", lesson.Vocab[1].English)
	assert.Equal(t, "කොහොමද", lesson.Vocab[2].Sinhala)
	assert.Equal(t, "how are you", lesson.Vocab[2].English)
	assert.Equal(t, "ඔව්", lesson.Vocab[3].Sinhala)
	assert.Equal(t, "yes", lesson.Vocab[3].English)

	require.Len(t, lesson.WordbankPrompts, 1)
	assert.Equal(t, []string{"ඔව්"}, lesson.WordbankPrompts[0].Distractors)

	require.Len(t, lesson.Exercises, 3)
	assert.Equal(t, "pick-hello", lesson.Exercises[0].ID)
	assert.Equal(t, "ex2", lesson.Exercises[1].ID)
	assert.Equal(t, "yes", lesson.Exercises[1].Pairs["ඔව්"])
	assert.Equal(t, "wordbank1", lesson.Exercises[2].ID)
	assert.Equal(t, "word_bank", lesson.Exercises[2].Type)
	options := lesson.Exercises[2].Options
	assert.ElementsMatch(t, []string{"ආයුබෝවන්", "කොහොමද", "ඔව්"}, options)
	assert.NotEqual(t, []string{"ආයුබෝවන්", "කොහොමද"}, options[:2], "bank must not list the answer in order")
	assert.Equal(t, []string{"ආයුබෝවන් කොහොමද"}, lesson.Exercises[2].Answers)

	again, err := Parse("fallback", []byte(greetingLesson))
	require.NoError(t, err)
	assert.Equal(t, options, again.Exercises[2].Options)

	require.Len(t, lesson.Sections, 2)
	assert.Equal(t, models.Section{Title: "Greetings", Level: 1, Body: "Say hello politely."}, lesson.Sections[0])
	assert.Equal(t, "Practice", lesson.Sections[1].Title)
}

func TestParseKeepsAuthoredIDsUnique(t *testing.T) {
	src := `---
wordbank_prompts:
  - { prompt: "Yes", answer: "ඔව්" }
exercises:
  - id: ex2
    type: fill_blank
    answers: [ඔව්]
  - type: fill_blank
    answers: [නැහැ]
  - id: wordbank1
    type: multiple_choice
    options: [ඔව්, නැහැ]
    answers: [ඔව්]
---
`
	lesson, err := Parse("ids", []byte(src))
	require.NoError(t, err)
	require.Len(t, lesson.Exercises, 4)

	seen := map[string]bool{}
	for _, ex := range lesson.Exercises {
		assert.False(t, seen[ex.ID], "duplicate id %s", ex.ID)
		seen[ex.ID] = true
	}
	assert.Equal(t, "ex2-2", lesson.Exercises[1].ID)
	assert.Equal(t, "wordbank1-2", lesson.Exercises[3].ID)
	assert.Equal(t, "word_bank", lesson.Exercises[3].Type)

	ex, found := lesson.FindExercise("wordbank1")
	require.True(t, found)
	assert.Equal(t, "multiple_choice", ex.Type)
}

func TestParseUsesFallbackIDAndHeadingTitle(t *testing.T) {
	lesson, err := Parse("numbers", []byte("# Numbers\n\nCounting.\n"))
	require.NoError(t, err)
	assert.Equal(t, "numbers", lesson.ID)
	assert.Equal(t, "Numbers", lesson.Title)
	assert.Empty(t, lesson.Vocab)
	assert.NotNil(t, lesson.Vocab)
}

func TestParseVocabularyTable(t *testing.T) {
	src := "---\ntitle: Family\n---\n# Family\n\n## Vocabulary\n\n" +
		"| English | Sinhala | Translit |\n|---|---|---|\n" +
		"| mother | අම්මා | ammā |\n| father | තාත්තා | tāttā |\n| | missing | |\n"
	lesson, err := Parse("family", []byte(src))
	require.NoError(t, err)
	require.Len(t, lesson.Vocab, 2)
	assert.Equal(t, models.VocabItem{Sinhala: "අම්මා", English: "mother", Translit: "ammā"}, lesson.Vocab[0])
}

func TestParseIgnoresHeadingsInCodeFence(t *testing.T) {
	src := "# Title\n\n```\n# not a heading\n```\n"
	lesson, err := Parse("x", []byte(src))
	require.NoError(t, err)
	require.Len(t, lesson.Sections, 1)
	assert.Contains(t, lesson.Sections[0].Body, "# not a heading")
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("broken", []byte("---\ntitle: x\n"))
	require.Error(t, err)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "broken", pe.LessonID)
	assert.ErrorIs(t, err, ErrUnterminatedFrontMatter)

	_, err = Parse("bad-yaml", []byte("---\nvocab: [unclosed\n---\n"))
	assert.Error(t, err)

	_, err = Parse("bad-vocab", []byte("---\nvocab:\n  - no separator here\n---\n"))
	assert.Error(t, err)
}

func TestSplit(t *testing.T) {
	front, body, err := Split([]byte("\xEF\xBB\xBF---\r\nid: a\r\n...\r\nbody\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "id: a\n", string(front))
	assert.Equal(t, "body\n", string(body))

	front, body, err = Split([]byte("---\nid: a\n---"))
	require.NoError(t, err)
	assert.Equal(t, "id: a\n", string(front))
	assert.Empty(t, body)

	front, body, err = Split([]byte("no front matter"))
	require.NoError(t, err)
	assert.Nil(t, front)
	assert.Equal(t, "no front matter", string(body))
}

func TestGlossary(t *testing.T) {
	g := NewGlossary([]models.VocabItem{
		{Sinhala: "ආයුබෝවන්", English: "Hello"},
		{Sinhala: "ඔව්", English: "yes"},
		{Sinhala: "ඔව්", English: "yeah"},
	})

	en, ok := g.TranslateToBase("  ආයුබෝවන් ")
	assert.True(t, ok)
	assert.Equal(t, "Hello", en)

	si, ok := g.TranslateToTarget("HELLO!")
	assert.True(t, ok)
	assert.Equal(t, "ආයුබෝවන්", si)

	en, _ = g.TranslateToBase("ඔව්")
	assert.Equal(t, "yes", en)

	_, ok = g.TranslateToTarget("goodbye")
	assert.False(t, ok)
	assert.Equal(t, 2, g.Len())
}

func TestNormalizeTargetComposes(t *testing.T) {
	// ො written as ෙ + ා
	decomposed := "\u0D9A\u0DD9\u0DCF"
	composed := "\u0D9A\u0DDC"
	assert.Equal(t, composed, NormalizeTarget(decomposed))
}
