package database

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sinhala/pkg/models"
)

// ExerciseResultRepository handles database operations for checked exercise answers
type ExerciseResultRepository struct{}

// NewExerciseResultRepository creates a new repository instance
func NewExerciseResultRepository() *ExerciseResultRepository {
	return &ExerciseResultRepository{}
}

// Create records a result
func (r *ExerciseResultRepository) Create(ctx context.Context, result *models.ExerciseResult) error {
	if result.AnsweredAt.IsZero() {
		result.AnsweredAt = time.Now().UTC()
	}
	_, err := DB.NamedExecContext(ctx, `
		INSERT INTO exercise_results (learner_id, lesson_id, exercise_id, correct, answered_at)
		VALUES (:learner_id, :lesson_id, :exercise_id, :correct, :answered_at)
	`, result)
	if err != nil {
		return fmt.Errorf("failed to create exercise result: %w", err)
	}
	return nil
}

// LessonScore returns how many distinct exercises of a lesson the learner has answered correctly
func (r *ExerciseResultRepository) LessonScore(ctx context.Context, learnerID, lessonID string) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT exercise_id) FROM exercise_results
		WHERE learner_id = $1 AND lesson_id = $2 AND correct = $3
	`, learnerID, lessonID, true)
	if err != nil {
		return 0, fmt.Errorf("failed to get lesson score: %w", err)
	}
	return count, nil
}
