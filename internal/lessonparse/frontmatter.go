// Package lessonparse reads hand-authored lesson files: markdown with a YAML front matter block
// holding the lesson's vocabulary, word-bank prompts and exercises.
package lessonparse

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand"
	"slices"
	"strings"

	"github.com/example/sinhala/pkg/models"
	"gopkg.in/yaml.v3"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// ErrUnterminatedFrontMatter is returned when the opening --- has no closing line
var ErrUnterminatedFrontMatter = errors.New("front matter is not terminated")

// ParseError ties a parse failure to the lesson it came from
type ParseError struct {
	LessonID string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("lesson %s: %v", e.LessonID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Split separates the front matter block from the markdown body.
// A file that does not start with --- has no front matter.
func Split(data []byte) (front, body []byte, err error) {
	data = bytes.TrimPrefix(data, bom)
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	first, rest, found := bytes.Cut(data, []byte("\n"))
	if strings.TrimSpace(string(first)) != "---" {
		return nil, data, nil
	}
	if !found {
		return nil, nil, ErrUnterminatedFrontMatter
	}

	offset := 0
	for offset <= len(rest) {
		line, _, _ := bytes.Cut(rest[offset:], []byte("\n"))
		trimmed := strings.TrimSpace(string(line))
		if trimmed == "---" || trimmed == "..." {
			end := offset + len(line) + 1
			if end > len(rest) {
				end = len(rest)
			}
			return rest[:offset], rest[end:], nil
		}
		if offset+len(line) >= len(rest) {
			break
		}
		offset += len(line) + 1
	}
	return nil, nil, ErrUnterminatedFrontMatter
}

type frontMatter struct {
	ID              string                  `yaml:"id"`
	Title           string                  `yaml:"title"`
	Description     string                  `yaml:"description"`
	Level           int                     `yaml:"level"`
	Characters      []string                `yaml:"characters"`
	Vocab           []vocabEntry            `yaml:"vocab"`
	WordbankPrompts []models.WordbankPrompt `yaml:"wordbank_prompts"`
	Exercises       []models.Exercise       `yaml:"exercises"`
}

var (
	sinhalaKeys  = []string{"si", "sinhala", "target"}
	englishKeys  = []string{"en", "english", "base"}
	translitKeys = []string{"translit", "roman", "transliteration"}
)

// vocabEntry accepts the spellings authors use for vocabulary items:
// a mapping with aliased keys, a single "sinhala: english" pair, or a "sinhala = english" scalar.
type vocabEntry models.VocabItem

func (v *vocabEntry) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		si, en, ok := strings.Cut(node.Value, "=")
		if !ok {
			return fmt.Errorf("line %d: vocab entry %q has no '='", node.Line, node.Value)
		}
		v.Sinhala = strings.TrimSpace(si)
		v.English = strings.TrimSpace(en)
		return nil
	case yaml.MappingNode:
		var m map[string]string
		if err := node.Decode(&m); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		v.Sinhala = pick(m, sinhalaKeys)
		v.English = pick(m, englishKeys)
		v.Translit = pick(m, translitKeys)
		v.Audio = m["audio"]
		if v.Sinhala == "" && v.English == "" && len(m) == 1 {
			for k, val := range m {
				v.Sinhala, v.English = k, val
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: unsupported vocab entry", node.Line)
	}
}

func pick(m map[string]string, keys []string) string {
	for _, k := range keys {
		if val, ok := m[k]; ok {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// Parse reads a lesson file. The id is used when the front matter does not name one.
func Parse(id string, data []byte) (*models.Lesson, error) {
	front, body, err := Split(data)
	if err != nil {
		return nil, &ParseError{LessonID: id, Err: err}
	}

	var fm frontMatter
	if len(bytes.TrimSpace(front)) > 0 {
		if err := yaml.Unmarshal(front, &fm); err != nil {
			return nil, &ParseError{LessonID: id, Err: fmt.Errorf("front matter: %w", err)}
		}
	}

	lesson := &models.Lesson{
		ID:              fm.ID,
		Title:           fm.Title,
		Description:     fm.Description,
		Level:           fm.Level,
		Characters:      fm.Characters,
		WordbankPrompts: fm.WordbankPrompts,
		Exercises:       fm.Exercises,
		Vocab:           make([]models.VocabItem, 0, len(fm.Vocab)),
	}
	if lesson.ID == "" {
		lesson.ID = id
	}
	for _, v := range fm.Vocab {
		if v.Sinhala == "" || v.English == "" {
			continue
		}
		lesson.Vocab = append(lesson.Vocab, models.VocabItem(v))
	}

	lesson.Sections = parseSections(body)
	if lesson.Title == "" {
		for _, s := range lesson.Sections {
			if s.Level == 1 {
				lesson.Title = s.Title
				break
			}
		}
	}
	if len(lesson.Vocab) == 0 {
		lesson.Vocab = vocabFromSections(lesson.Sections)
	}

	numberExercises(lesson)
	return lesson, nil
}

// numberExercises gives unnamed exercises stable ids and turns word-bank prompts into exercises.
// Generated ids never reuse an id an author already chose.
func numberExercises(lesson *models.Lesson) {
	taken := make(map[string]bool, len(lesson.Exercises)+len(lesson.WordbankPrompts))
	for _, ex := range lesson.Exercises {
		if ex.ID != "" {
			taken[ex.ID] = true
		}
	}

	for i := range lesson.Exercises {
		if lesson.Exercises[i].ID == "" {
			lesson.Exercises[i].ID = freeID(taken, "ex", i+1)
		}
	}
	for i, p := range lesson.WordbankPrompts {
		id := freeID(taken, "wordbank", i+1)
		lesson.Exercises = append(lesson.Exercises, models.Exercise{
			ID:      id,
			Type:    "word_bank",
			Prompt:  p.Prompt,
			Options: shuffleTokens(lesson.ID+"/"+id, strings.Fields(p.Answer), p.Distractors),
			Answers: []string{p.Answer},
		})
	}
}

func freeID(taken map[string]bool, prefix string, n int) string {
	id := fmt.Sprintf("%s%d", prefix, n)
	for k := 2; taken[id]; k++ {
		id = fmt.Sprintf("%s%d-%d", prefix, n, k)
	}
	taken[id] = true
	return id
}

// shuffleTokens mixes the answer tokens with the distractors in an order fixed by seed,
// so the bank looks the same on every load but never lists the answer as written.
func shuffleTokens(seed string, answer, distractors []string) []string {
	tokens := make([]string, 0, len(answer)+len(distractors))
	tokens = append(tokens, answer...)
	tokens = append(tokens, distractors...)

	h := fnv.New64a()
	h.Write([]byte(seed))
	rnd := rand.New(rand.NewSource(int64(h.Sum64())))
	rnd.Shuffle(len(tokens), func(i, j int) {
		tokens[i], tokens[j] = tokens[j], tokens[i]
	})

	// Порядок ответа не должен совпадать с банком слов
	if len(tokens) > 1 && slices.Equal(tokens[:len(answer)], answer) {
		tokens = append(tokens[1:], tokens[0])
	}
	return tokens
}
