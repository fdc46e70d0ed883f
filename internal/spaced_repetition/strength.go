package spaced_repetition

import (
	"sort"
	"time"

	"github.com/example/sinhala/pkg/models"
)

const (
	// MinStrength and MaxStrength bound a character's strength
	MinStrength = 0
	MaxStrength = 100

	// CorrectBonus is added for a correct answer
	CorrectBonus = 15
	// StreakBonus replaces CorrectBonus once the streak is longer than StreakThreshold
	StreakBonus     = 20
	StreakThreshold = 3
	// IncorrectPenalty is subtracted for a wrong answer
	IncorrectPenalty = 10

	// Пороги статусов
	LearningThreshold = 40
	MasteredThreshold = 90
)

// Clamp keeps strength inside [MinStrength, MaxStrength]
func Clamp(strength int) int {
	if strength < MinStrength {
		return MinStrength
	}
	if strength > MaxStrength {
		return MaxStrength
	}
	return strength
}

// CalculateStatus derives the status category from strength
func CalculateStatus(strength int) models.Status {
	switch {
	case strength >= MasteredThreshold:
		return models.StatusMastered
	case strength >= LearningThreshold:
		return models.StatusLearning
	default:
		return models.StatusNew
	}
}

// UpdateScore applies one answer to the progress record
func UpdateScore(progress *models.CharacterProgress, correct bool, now time.Time) {
	strength := Clamp(progress.Strength)

	progress.Attempts++
	progress.LastPracticed.Time = now
	progress.LastPracticed.Valid = true

	if correct {
		progress.Correct++
		progress.ConsecutiveCorrect++

		bonus := CorrectBonus
		if progress.ConsecutiveCorrect > StreakThreshold {
			bonus = StreakBonus
		}
		strength = Clamp(strength + bonus)
	} else {
		// Ошибка сбрасывает серию
		progress.ConsecutiveCorrect = 0
		strength = Clamp(strength - IncorrectPenalty)
	}

	progress.Strength = strength
	progress.Status = CalculateStatus(strength)
}

// NextCharacters orders candidate characters for practice and returns at most limit ids.
// Characters never practised come first, then the weakest, then the least recently practised.
func NextCharacters(progress []models.CharacterProgress, candidates []string, limit int) []string {
	byChar := make(map[string]models.CharacterProgress, len(progress))
	for _, p := range progress {
		byChar[p.CharID] = p
	}

	type entry struct {
		id       string
		seen     bool
		strength int
		last     time.Time
		order    int
	}

	entries := make([]entry, 0, len(candidates))
	for i, id := range candidates {
		e := entry{id: id, order: i}
		if p, ok := byChar[id]; ok {
			e.seen = true
			e.strength = p.Strength
			if p.LastPracticed.Valid {
				e.last = p.LastPracticed.Time
			}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.seen != b.seen {
			return !a.seen
		}
		if a.strength != b.strength {
			return a.strength < b.strength
		}
		if !a.last.Equal(b.last) {
			return a.last.Before(b.last)
		}
		return a.order < b.order
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.id)
	}
	return ids
}

// IsMastered determines if a character is considered mastered
func IsMastered(progress *models.CharacterProgress) bool {
	return CalculateStatus(progress.Strength) == models.StatusMastered
}

// Summarize aggregates progress over a fixed list of characters.
// Characters without a record count as new with strength 0.
func Summarize(progress []models.CharacterProgress, charIDs []string) models.ProgressSummary {
	byChar := make(map[string]models.CharacterProgress, len(progress))
	for _, p := range progress {
		byChar[p.CharID] = p
	}

	summary := models.ProgressSummary{Total: len(charIDs)}
	total := 0
	for _, id := range charIDs {
		p, ok := byChar[id]
		if !ok {
			summary.New++
			continue
		}
		total += p.Strength
		switch CalculateStatus(p.Strength) {
		case models.StatusMastered:
			summary.Mastered++
		case models.StatusLearning:
			summary.Learning++
		default:
			summary.New++
		}
	}
	if len(charIDs) > 0 {
		summary.AverageStrength = float64(total) / float64(len(charIDs))
	}
	return summary
}
