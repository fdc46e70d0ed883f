package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/sinhala/pkg/models"
)

// SubscriberRepository handles database operations for Telegram subscribers
type SubscriberRepository struct{}

// NewSubscriberRepository creates a new repository instance
func NewSubscriberRepository() *SubscriberRepository {
	return &SubscriberRepository{}
}

// Subscribe creates the subscriber or re-enables it
func (r *SubscriberRepository) Subscribe(ctx context.Context, sub *models.Subscriber) error {
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now().UTC()
	}
	sub.Enabled = true
	_, err := DB.NamedExecContext(ctx, `
		INSERT INTO telegram_subscribers (chat_id, learner_id, reminder_hour, enabled, created_at)
		VALUES (:chat_id, :learner_id, :reminder_hour, :enabled, :created_at)
		ON CONFLICT (chat_id) DO UPDATE SET enabled = excluded.enabled
	`, sub)
	if err != nil {
		return fmt.Errorf("failed to save subscriber: %w", err)
	}
	return nil
}

// Get returns a subscriber by chat id
func (r *SubscriberRepository) Get(ctx context.Context, chatID int64) (*models.Subscriber, error) {
	var sub models.Subscriber
	err := DB.GetContext(ctx, &sub, "SELECT * FROM telegram_subscribers WHERE chat_id = $1", chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}
	return &sub, nil
}

// SetEnabled turns reminders on or off
func (r *SubscriberRepository) SetEnabled(ctx context.Context, chatID int64, enabled bool) error {
	res, err := DB.ExecContext(ctx, "UPDATE telegram_subscribers SET enabled = $1 WHERE chat_id = $2", enabled, chatID)
	if err != nil {
		return fmt.Errorf("failed to update subscriber: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetReminderHour changes the hour reminders are sent at
func (r *SubscriberRepository) SetReminderHour(ctx context.Context, chatID int64, hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("invalid reminder hour %d", hour)
	}
	res, err := DB.ExecContext(ctx, "UPDATE telegram_subscribers SET reminder_hour = $1 WHERE chat_id = $2", hour, chatID)
	if err != nil {
		return fmt.Errorf("failed to update subscriber: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForHour returns the enabled subscribers whose reminder hour is hour
func (r *SubscriberRepository) ListForHour(ctx context.Context, hour int) ([]models.Subscriber, error) {
	subs := []models.Subscriber{}
	err := DB.SelectContext(ctx, &subs,
		"SELECT * FROM telegram_subscribers WHERE enabled = $1 AND reminder_hour = $2 ORDER BY chat_id", true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	return subs, nil
}
