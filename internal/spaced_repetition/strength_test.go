package spaced_repetition

import (
	"database/sql"
	"testing"
	"time"

	"github.com/example/sinhala/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestCalculateStatusBoundaries(t *testing.T) {
	cases := map[int]models.Status{
		0:   models.StatusNew,
		39:  models.StatusNew,
		40:  models.StatusLearning,
		89:  models.StatusLearning,
		90:  models.StatusMastered,
		100: models.StatusMastered,
	}
	for strength, want := range cases {
		assert.Equal(t, want, CalculateStatus(strength), "strength %d", strength)
	}
}

func TestCalculateStatusMonotonic(t *testing.T) {
	rank := map[models.Status]int{models.StatusNew: 0, models.StatusLearning: 1, models.StatusMastered: 2}
	prev := rank[CalculateStatus(0)]
	for s := 1; s <= 100; s++ {
		cur := rank[CalculateStatus(s)]
		assert.GreaterOrEqual(t, cur, prev, "status went down at %d", s)
		prev = cur
	}
}

func TestUpdateScoreCorrect(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for s := 0; s <= 100; s++ {
		p := &models.CharacterProgress{Strength: s}
		UpdateScore(p, true, now)
		want := s + CorrectBonus
		if want > 100 {
			want = 100
		}
		assert.Equal(t, want, p.Strength, "from %d", s)
		assert.Equal(t, 1, p.ConsecutiveCorrect)
		assert.Equal(t, 1, p.Attempts)
		assert.Equal(t, 1, p.Correct)
		assert.Equal(t, CalculateStatus(want), p.Status)
		assert.True(t, p.LastPracticed.Valid)
		assert.Equal(t, now, p.LastPracticed.Time)
	}
}

func TestUpdateScoreStreakBonus(t *testing.T) {
	p := &models.CharacterProgress{Strength: 10, ConsecutiveCorrect: 3}
	UpdateScore(p, true, time.Now())
	assert.Equal(t, 30, p.Strength)
	assert.Equal(t, 4, p.ConsecutiveCorrect)

	// third correct in a row still gets the normal bonus
	p = &models.CharacterProgress{Strength: 10, ConsecutiveCorrect: 2}
	UpdateScore(p, true, time.Now())
	assert.Equal(t, 25, p.Strength)
}

func TestUpdateScoreIncorrect(t *testing.T) {
	for s := 0; s <= 100; s++ {
		p := &models.CharacterProgress{Strength: s, ConsecutiveCorrect: 5, Correct: 5, Attempts: 5}
		UpdateScore(p, false, time.Now())
		want := s - IncorrectPenalty
		if want < 0 {
			want = 0
		}
		assert.Equal(t, want, p.Strength, "from %d", s)
		assert.Equal(t, 0, p.ConsecutiveCorrect)
		assert.Equal(t, 6, p.Attempts)
		assert.Equal(t, 5, p.Correct)
	}
}

func TestUpdateScoreClampsOutOfRangeInput(t *testing.T) {
	p := &models.CharacterProgress{Strength: 150}
	UpdateScore(p, false, time.Now())
	assert.Equal(t, 90, p.Strength)

	p = &models.CharacterProgress{Strength: -20}
	UpdateScore(p, true, time.Now())
	assert.Equal(t, 15, p.Strength)
}

func TestSequenceReachesMastered(t *testing.T) {
	p := models.NewCharacterProgress("learner", "a")
	now := time.Now()
	// 15 + 15 + 15 + 20 + 20 = 85, then 20 more
	for i := 0; i < 6; i++ {
		UpdateScore(p, true, now)
	}
	assert.Equal(t, 100, p.Strength)
	assert.Equal(t, models.StatusMastered, p.Status)
	assert.True(t, IsMastered(p))
}

func TestNextCharacters(t *testing.T) {
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(24 * time.Hour)
	progress := []models.CharacterProgress{
		{CharID: "a", Strength: 50, LastPracticed: sql.NullTime{Time: recent, Valid: true}},
		{CharID: "b", Strength: 10, LastPracticed: sql.NullTime{Time: recent, Valid: true}},
		{CharID: "c", Strength: 50, LastPracticed: sql.NullTime{Time: old, Valid: true}},
	}
	got := NextCharacters(progress, []string{"a", "b", "c", "d", "e"}, 0)
	assert.Equal(t, []string{"d", "e", "b", "c", "a"}, got)

	assert.Equal(t, []string{"d", "e"}, NextCharacters(progress, []string{"a", "b", "c", "d", "e"}, 2))
}

func TestSummarize(t *testing.T) {
	progress := []models.CharacterProgress{
		{CharID: "a", Strength: 95},
		{CharID: "b", Strength: 40},
		{CharID: "x", Strength: 100},
	}
	s := Summarize(progress, []string{"a", "b", "c", "d"})
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Mastered)
	assert.Equal(t, 1, s.Learning)
	assert.Equal(t, 2, s.New)
	assert.InDelta(t, 33.75, s.AverageStrength, 0.001)

	assert.Zero(t, Summarize(progress, nil).Total)
}
