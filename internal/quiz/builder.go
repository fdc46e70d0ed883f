package quiz

import (
	"math/rand"
	"strings"

	"github.com/example/sinhala/pkg/models"
)

// Question is a generated multiple-choice drill
type Question struct {
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"-"`
}

// Correct returns the right option
func (q Question) Correct() string {
	return q.Options[q.CorrectIndex]
}

// BuildMultipleChoice asks for the English meaning of target with up to count-1 distractors
// taken from the rest of the vocabulary
func BuildMultipleChoice(vocab []models.VocabItem, target models.VocabItem, count int, rnd *rand.Rand) Question {
	pool := make([]string, 0, len(vocab))
	seen := map[string]bool{strings.ToLower(target.English): true}
	for _, v := range vocab {
		key := strings.ToLower(v.English)
		if seen[key] {
			continue
		}
		seen[key] = true
		pool = append(pool, v.English)
	}
	return buildQuestion(target.Sinhala, target.English, pool, count, rnd)
}

// BuildCharacterQuestion asks for the romanization of a character
func BuildCharacterQuestion(chars []models.Character, target models.Character, count int, rnd *rand.Rand) Question {
	pool := make([]string, 0, len(chars))
	seen := map[string]bool{target.Romanization: true}
	for _, c := range chars {
		if seen[c.Romanization] || c.Romanization == "" {
			continue
		}
		seen[c.Romanization] = true
		pool = append(pool, c.Romanization)
	}
	return buildQuestion(target.Glyph, target.Romanization, pool, count, rnd)
}

func buildQuestion(prompt, correct string, pool []string, count int, rnd *rand.Rand) Question {
	rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if count < 1 {
		count = 1
	}
	if len(pool) > count-1 {
		pool = pool[:count-1]
	}

	options := append(pool, correct)
	correctIndex := len(options) - 1

	// Перемешиваем варианты, следя за индексом правильного ответа
	rnd.Shuffle(len(options), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		options[i], options[j] = options[j], options[i]
	})

	return Question{Prompt: prompt, Options: options, CorrectIndex: correctIndex}
}

// BlankSentence replaces the first occurrence of word in sentence with a blank
func BlankSentence(sentence, word string) string {
	const blank = "_______"
	if word == "" {
		return sentence + " " + blank
	}
	lowerSentence := strings.ToLower(sentence)
	idx := strings.Index(lowerSentence, strings.ToLower(word))
	if idx < 0 || len(lowerSentence) != len(sentence) {
		idx = strings.Index(sentence, word)
	}
	if idx < 0 {
		// Слово не найдено, просто добавляем пропуск
		return sentence + " " + blank
	}
	return sentence[:idx] + blank + sentence[idx+len(word):]
}

// FillBlankFromVocab turns a vocabulary item and an example sentence into a fill-blank exercise
func FillBlankFromVocab(id string, item models.VocabItem, sentence string) models.Exercise {
	return models.Exercise{
		ID:       id,
		Type:     string(FillBlank),
		Prompt:   item.English,
		Sentence: BlankSentence(sentence, item.Sinhala),
		Answers:  []string{item.Sinhala},
	}
}
