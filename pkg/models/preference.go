package models

import "time"

// Preference is a small per-learner setting kept by the browser app
type Preference struct {
	LearnerID string    `json:"-" db:"learner_id"`
	Key       string    `json:"key" db:"pref_key"`
	Value     string    `json:"value" db:"pref_value"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ExerciseResult records a checked exercise answer
type ExerciseResult struct {
	ID         int64     `json:"id" db:"id"`
	LearnerID  string    `json:"learner_id" db:"learner_id"`
	LessonID   string    `json:"lesson_id" db:"lesson_id"`
	ExerciseID string    `json:"exercise_id" db:"exercise_id"`
	Correct    bool      `json:"correct" db:"correct"`
	AnsweredAt time.Time `json:"answered_at" db:"answered_at"`
}

// Subscriber is a Telegram chat that receives practice reminders
type Subscriber struct {
	ChatID       int64     `json:"chat_id" db:"chat_id"`
	LearnerID    string    `json:"learner_id" db:"learner_id"`
	ReminderHour int       `json:"reminder_hour" db:"reminder_hour"`
	Enabled      bool      `json:"enabled" db:"enabled"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
