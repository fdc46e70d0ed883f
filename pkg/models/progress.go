package models

import (
	"database/sql"
	"time"
)

// Status is the mastery category derived from strength
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusMastered Status = "mastered"
)

// CharacterProgress tracks a learner's strength with a specific character
type CharacterProgress struct {
	ID                 int64        `json:"-" db:"id"`
	LearnerID          string       `json:"learner_id" db:"learner_id"`
	CharID             string       `json:"char_id" db:"char_id"`
	Strength           int          `json:"strength" db:"strength"`                       // 0-100
	Attempts           int          `json:"attempts" db:"attempts"`
	Correct            int          `json:"correct" db:"correct"`
	ConsecutiveCorrect int          `json:"consecutive_correct" db:"consecutive_correct"` // Streak of correct answers
	Status             Status       `json:"status" db:"status"`
	LastPracticed      sql.NullTime `json:"-" db:"last_practiced"`
	CreatedAt          time.Time    `json:"-" db:"created_at"`
	UpdatedAt          time.Time    `json:"-" db:"updated_at"`
}

// StorageKey is the key the browser app used for this record in localStorage
func (p *CharacterProgress) StorageKey() string {
	return "char-progress-" + p.CharID
}

// NewCharacterProgress returns the record used for characters never practised
func NewCharacterProgress(learnerID, charID string) *CharacterProgress {
	return &CharacterProgress{
		LearnerID: learnerID,
		CharID:    charID,
		Status:    StatusNew,
	}
}

// ProgressSummary aggregates a learner's character progress
type ProgressSummary struct {
	Total           int     `json:"total" db:"total"`
	New             int     `json:"new" db:"new_count"`
	Learning        int     `json:"learning" db:"learning_count"`
	Mastered        int     `json:"mastered" db:"mastered_count"`
	AverageStrength float64 `json:"average_strength" db:"average_strength"`
}
