package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/sinhala/pkg/models"
)

// CharacterProgressRepository handles database operations for character progress
type CharacterProgressRepository struct{}

// NewCharacterProgressRepository creates a new repository instance
func NewCharacterProgressRepository() *CharacterProgressRepository {
	return &CharacterProgressRepository{}
}

// Get returns progress for a specific learner and character
func (r *CharacterProgressRepository) Get(ctx context.Context, learnerID, charID string) (*models.CharacterProgress, error) {
	var progress models.CharacterProgress
	err := DB.GetContext(ctx, &progress,
		"SELECT * FROM character_progress WHERE learner_id = $1 AND char_id = $2", learnerID, charID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get character progress: %w", err)
	}
	return &progress, nil
}

// GetOrNew returns the stored record or a fresh one for characters never practised
func (r *CharacterProgressRepository) GetOrNew(ctx context.Context, learnerID, charID string) (*models.CharacterProgress, error) {
	progress, err := r.Get(ctx, learnerID, charID)
	if errors.Is(err, ErrNotFound) {
		return models.NewCharacterProgress(learnerID, charID), nil
	}
	return progress, err
}

// ListByLearner returns all progress records of a learner
func (r *CharacterProgressRepository) ListByLearner(ctx context.Context, learnerID string) ([]models.CharacterProgress, error) {
	progress := []models.CharacterProgress{}
	err := DB.SelectContext(ctx, &progress,
		"SELECT * FROM character_progress WHERE learner_id = $1 ORDER BY char_id", learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list character progress: %w", err)
	}
	return progress, nil
}

// Apply reads the record, lets fn change it and stores it in one transaction,
// so concurrent answers for the same character are applied one after another.
func (r *CharacterProgressRepository) Apply(ctx context.Context, learnerID, charID string, fn func(*models.CharacterProgress)) (*models.CharacterProgress, error) {
	tx, err := DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	// Строка должна существовать, чтобы её можно было заблокировать
	_, err = tx.ExecContext(ctx, `
		INSERT INTO character_progress (learner_id, char_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (learner_id, char_id) DO NOTHING
	`, learnerID, charID, string(models.StatusNew), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create character progress: %w", err)
	}

	query := "SELECT * FROM character_progress WHERE learner_id = $1 AND char_id = $2"
	if DB.DriverName() == "postgres" {
		query += " FOR UPDATE"
	}
	var progress models.CharacterProgress
	if err := tx.GetContext(ctx, &progress, query, learnerID, charID); err != nil {
		return nil, fmt.Errorf("failed to get character progress: %w", err)
	}

	fn(&progress)
	progress.UpdatedAt = now

	var lastPracticed interface{}
	if progress.LastPracticed.Valid {
		lastPracticed = progress.LastPracticed.Time.UTC()
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE character_progress SET
			strength = $1, attempts = $2, correct = $3, consecutive_correct = $4,
			status = $5, last_practiced = $6, updated_at = $7
		WHERE id = $8
	`,
		progress.Strength,
		progress.Attempts,
		progress.Correct,
		progress.ConsecutiveCorrect,
		string(progress.Status),
		lastPracticed,
		progress.UpdatedAt,
		progress.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save character progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit character progress: %w", err)
	}
	return &progress, nil
}

// Reset removes a progress record so the character counts as new again
func (r *CharacterProgressRepository) Reset(ctx context.Context, learnerID, charID string) error {
	_, err := DB.ExecContext(ctx,
		"DELETE FROM character_progress WHERE learner_id = $1 AND char_id = $2", learnerID, charID)
	if err != nil {
		return fmt.Errorf("failed to reset character progress: %w", err)
	}
	return nil
}

// Summary returns status counts and average strength over the characters a learner practised
func (r *CharacterProgressRepository) Summary(ctx context.Context, learnerID string) (*models.ProgressSummary, error) {
	var summary models.ProgressSummary
	err := DB.GetContext(ctx, &summary, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'new' THEN 1 ELSE 0 END), 0) AS new_count,
			COALESCE(SUM(CASE WHEN status = 'learning' THEN 1 ELSE 0 END), 0) AS learning_count,
			COALESCE(SUM(CASE WHEN status = 'mastered' THEN 1 ELSE 0 END), 0) AS mastered_count,
			COALESCE(AVG(strength), 0) AS average_strength
		FROM character_progress
		WHERE learner_id = $1
	`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress summary: %w", err)
	}
	return &summary, nil
}
