package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/sinhala/pkg/models"
)

// PreferenceRepository handles database operations for learner preferences
type PreferenceRepository struct{}

// NewPreferenceRepository creates a new repository instance
func NewPreferenceRepository() *PreferenceRepository {
	return &PreferenceRepository{}
}

// Get returns a preference value
func (r *PreferenceRepository) Get(ctx context.Context, learnerID, key string) (*models.Preference, error) {
	if !AllowedPreferenceKeys[key] {
		return nil, fmt.Errorf("%q: %w", key, ErrUnknownPreference)
	}
	var pref models.Preference
	err := DB.GetContext(ctx, &pref,
		"SELECT * FROM preferences WHERE learner_id = $1 AND pref_key = $2", learnerID, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preference: %w", err)
	}
	return &pref, nil
}

// Set stores a preference value
func (r *PreferenceRepository) Set(ctx context.Context, learnerID, key, value string) (*models.Preference, error) {
	if !AllowedPreferenceKeys[key] {
		return nil, fmt.Errorf("%q: %w", key, ErrUnknownPreference)
	}
	pref := &models.Preference{LearnerID: learnerID, Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := DB.NamedExecContext(ctx, `
		INSERT INTO preferences (learner_id, pref_key, pref_value, updated_at)
		VALUES (:learner_id, :pref_key, :pref_value, :updated_at)
		ON CONFLICT (learner_id, pref_key) DO UPDATE SET
			pref_value = excluded.pref_value,
			updated_at = excluded.updated_at
	`, pref)
	if err != nil {
		return nil, fmt.Errorf("failed to save preference: %w", err)
	}
	return pref, nil
}

// All returns every preference of a learner
func (r *PreferenceRepository) All(ctx context.Context, learnerID string) ([]models.Preference, error) {
	prefs := []models.Preference{}
	err := DB.SelectContext(ctx, &prefs,
		"SELECT * FROM preferences WHERE learner_id = $1 ORDER BY pref_key", learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return prefs, nil
}
