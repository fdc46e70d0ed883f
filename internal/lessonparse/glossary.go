package lessonparse

import (
	"strings"

	"github.com/example/sinhala/pkg/models"
	"golang.org/x/text/unicode/norm"
)

// Glossary translates between Sinhala and the base language using a lesson's vocabulary
type Glossary struct {
	toBase   map[string]string
	toTarget map[string]string
}

// NewGlossary indexes vocabulary in both directions; the first entry for a key wins
func NewGlossary(vocab []models.VocabItem) *Glossary {
	g := &Glossary{
		toBase:   make(map[string]string, len(vocab)),
		toTarget: make(map[string]string, len(vocab)),
	}
	for _, v := range vocab {
		if k := NormalizeTarget(v.Sinhala); k != "" {
			if _, ok := g.toBase[k]; !ok {
				g.toBase[k] = v.English
			}
		}
		if k := NormalizeBase(v.English); k != "" {
			if _, ok := g.toTarget[k]; !ok {
				g.toTarget[k] = v.Sinhala
			}
		}
	}
	return g
}

// TranslateToBase returns the base-language gloss of a Sinhala word
func (g *Glossary) TranslateToBase(sinhala string) (string, bool) {
	v, ok := g.toBase[NormalizeTarget(sinhala)]
	return v, ok
}

// TranslateToTarget returns the Sinhala form of a base-language word
func (g *Glossary) TranslateToTarget(english string) (string, bool) {
	v, ok := g.toTarget[NormalizeBase(english)]
	return v, ok
}

// Len is the number of Sinhala entries
func (g *Glossary) Len() int {
	return len(g.toBase)
}

// NormalizeTarget composes Sinhala text to NFC and collapses whitespace.
// Decomposed vowel signs compose to the same key.
func NormalizeTarget(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// NormalizeBase lowercases base-language text and drops trailing punctuation
func NormalizeBase(s string) string {
	s = strings.ToLower(NormalizeTarget(s))
	return strings.TrimRight(s, ".!?,;:")
}
