package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/sinhala/pkg/models"
	"github.com/go-co-op/gocron"
)

// Notifier interface for sending notifications
type Notifier interface {
	SendReminders(chatID int64, count int) error
}

// SubscriberSource lists the chats due for a reminder
type SubscriberSource interface {
	ListForHour(ctx context.Context, hour int) ([]models.Subscriber, error)
}

// ProgressSource summarises a learner's character progress
type ProgressSource interface {
	Summary(ctx context.Context, learnerID string) (*models.ProgressSummary, error)
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler   *gocron.Scheduler
	notifier    Notifier
	subscribers SubscriberSource
	progress    ProgressSource
	// Количество символов в курсе
	totalCharacters func() int
}

// New creates a new scheduler instance. Reminder hours are UTC.
func New(notifier Notifier, subscribers SubscriberSource, progress ProgressSource, totalCharacters func() int) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:       s,
		notifier:        notifier,
		subscribers:     subscribers,
		progress:        progress,
		totalCharacters: totalCharacters,
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	// Проверяем подписчиков в начале каждого часа
	_, err := s.scheduler.Cron("0 * * * *").Do(func() {
		sent, err := s.CheckAndSendReminders(context.Background(), time.Now().UTC())
		if err != nil {
			log.Printf("Error sending reminders: %v", err)
			return
		}
		log.Printf("Sent %d practice reminders", sent)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	// Start the scheduler in a non-blocking manner
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// CheckAndSendReminders notifies every subscriber whose reminder hour is now and who
// still has characters to master. It returns the number of reminders sent.
func (s *Scheduler) CheckAndSendReminders(ctx context.Context, now time.Time) (int, error) {
	subs, err := s.subscribers.ListForHour(ctx, now.Hour())
	if err != nil {
		return 0, err
	}

	total := s.totalCharacters()
	sent := 0
	for _, sub := range subs {
		count, err := s.pending(ctx, sub.LearnerID, total)
		if err != nil {
			log.Printf("Error getting progress for chat %d: %v", sub.ChatID, err)
			continue
		}
		if count == 0 {
			continue
		}

		if err := s.notifier.SendReminders(sub.ChatID, count); err != nil {
			log.Printf("Error sending reminder to chat %d: %v", sub.ChatID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// RunManualCheck forces a reminder for one subscriber
func (s *Scheduler) RunManualCheck(ctx context.Context, sub models.Subscriber) error {
	count, err := s.pending(ctx, sub.LearnerID, s.totalCharacters())
	if err != nil {
		return err
	}
	if count > 0 {
		return s.notifier.SendReminders(sub.ChatID, count)
	}
	return nil
}

// pending is the number of course characters the learner has not mastered yet
func (s *Scheduler) pending(ctx context.Context, learnerID string, total int) (int, error) {
	summary, err := s.progress.Summary(ctx, learnerID)
	if err != nil {
		return 0, err
	}
	count := total - summary.Mastered
	if count < 0 {
		count = 0
	}
	return count, nil
}
