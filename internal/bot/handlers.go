package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/example/sinhala/internal/database"
	"github.com/example/sinhala/internal/quiz"
	"github.com/example/sinhala/internal/spaced_repetition"
	"github.com/example/sinhala/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const helpText = "📖 How to use this bot\n\n" +
	"/practice - Get a drill for your weakest character\n" +
	"/progress - Show how many characters you have mastered\n" +
	"/time <hour> - Set the reminder hour (0-23, UTC)\n" +
	"/stop - Turn off daily reminders\n" +
	"/start - Turn reminders back on\n" +
	"/help - Show this message"

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		if update.Message.IsCommand() {
			return b.HandleCommand(ctx, update.Message)
		}
		return b.send(update.Message.Chat.ID, "I only understand commands. Send /help to see them.", nil)
	case update.CallbackQuery != nil:
		return b.HandleCallback(ctx, update.CallbackQuery)
	}
	return nil
}

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		return b.handleStart(ctx, chatID)
	case "practice":
		return b.sendDrill(ctx, chatID)
	case "progress":
		return b.sendProgress(ctx, chatID)
	case "stop":
		return b.handleStop(ctx, chatID)
	case "time":
		return b.handleTime(ctx, chatID, message.CommandArguments())
	case "help":
		return b.send(chatID, helpText, nil)
	default:
		return b.send(chatID, "Unknown command. Send /help to see what I can do.", nil)
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64) error {
	sub := &models.Subscriber{
		ChatID:       chatID,
		LearnerID:    LearnerID(chatID),
		ReminderHour: b.config.DefaultReminderHour,
	}
	if err := b.subscribers.Subscribe(ctx, sub); err != nil {
		return fmt.Errorf("failed to subscribe chat %d: %w", chatID, err)
	}

	text := "👋 Welcome! I will help you learn to read Sinhala letters.\n\n" +
		"Each drill shows a letter and asks for its sound. " +
		"Letters you get wrong come back sooner, and I will remind you once a day.\n\n" +
		"Send /help for all commands."
	keyboard := createKeyboard(b.MainMenuButtons())
	return b.send(chatID, text, &keyboard)
}

func (b *Bot) handleStop(ctx context.Context, chatID int64) error {
	err := b.subscribers.SetEnabled(ctx, chatID, false)
	if errors.Is(err, database.ErrNotFound) {
		return b.send(chatID, "You are not subscribed. Send /start to get reminders.", nil)
	}
	if err != nil {
		return err
	}
	return b.send(chatID, "🔕 Reminders are off. Send /start to turn them back on.", nil)
}

func (b *Bot) handleTime(ctx context.Context, chatID int64, args string) error {
	hour, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || hour < 0 || hour > 23 {
		return b.send(chatID, "Please give an hour from 0 to 23, e.g. /time 18", nil)
	}
	err = b.subscribers.SetReminderHour(ctx, chatID, hour)
	if errors.Is(err, database.ErrNotFound) {
		return b.send(chatID, "You are not subscribed. Send /start first.", nil)
	}
	if err != nil {
		return err
	}
	return b.send(chatID, fmt.Sprintf("🕒 Reminders will arrive at %02d:00 UTC.", hour), nil)
}

// sendDrill asks about the character the learner most needs to practise
func (b *Bot) sendDrill(ctx context.Context, chatID int64) error {
	learner := LearnerID(chatID)
	progress, err := b.progress.ListByLearner(ctx, learner)
	if err != nil {
		return err
	}
	next := spaced_repetition.NextCharacters(progress, b.content.CharacterIDs(), 1)
	if len(next) == 0 {
		return b.send(chatID, "No characters are available yet.", nil)
	}
	target, err := b.content.Character(next[0])
	if err != nil {
		return err
	}

	var all []models.Character
	for _, set := range b.content.CharacterSets() {
		all = append(all, set.Characters...)
	}

	b.mu.Lock()
	q := quiz.BuildCharacterQuestion(all, target, b.config.OptionsPerQuestion, b.rnd)
	b.pending[chatID] = pendingQuestion{CharID: target.ID, Options: q.Options, CorrectIndex: q.CorrectIndex}
	b.mu.Unlock()

	buttons := make([][]MenuButton, 0, len(q.Options))
	for i, opt := range q.Options {
		buttons = append(buttons, []MenuButton{{Text: opt, CallbackData: answerData(target.ID, i)}})
	}
	keyboard := createKeyboard(buttons)
	return b.send(chatID, fmt.Sprintf("Which sound does %s make?", q.Prompt), &keyboard)
}

func (b *Bot) sendProgress(ctx context.Context, chatID int64) error {
	progress, err := b.progress.ListByLearner(ctx, LearnerID(chatID))
	if err != nil {
		return err
	}
	ids := b.content.CharacterIDs()
	summary := spaced_repetition.Summarize(progress, ids)

	text := fmt.Sprintf("📊 Your progress\n\n"+
		"Mastered: %d / %d\n"+
		"Learning: %d\n"+
		"Not started: %d\n"+
		"Average strength: %.0f/100",
		summary.Mastered, summary.Total, summary.Learning, summary.New, summary.AverageStrength)
	keyboard := createKeyboard(b.MainMenuButtons())
	return b.send(chatID, text, &keyboard)
}

// HandleCallback handles inline keyboard presses
func (b *Bot) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	if callback.Message == nil || callback.Message.Chat == nil {
		return nil
	}
	chatID := callback.Message.Chat.ID

	// Убираем индикатор загрузки на кнопке
	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	switch callback.Data {
	case callbackPractice:
		return b.sendDrill(ctx, chatID)
	case callbackProgress:
		return b.sendProgress(ctx, chatID)
	}

	charID, option, ok := parseAnswerData(callback.Data)
	if !ok {
		return fmt.Errorf("unknown callback data %q", callback.Data)
	}
	return b.handleAnswer(ctx, chatID, charID, option)
}

func (b *Bot) handleAnswer(ctx context.Context, chatID int64, charID string, option int) error {
	b.mu.Lock()
	q, ok := b.pending[chatID]
	if ok && q.CharID == charID {
		delete(b.pending, chatID)
	}
	b.mu.Unlock()

	if !ok || q.CharID != charID || option >= len(q.Options) {
		return b.send(chatID, "This question has expired. Send /practice for a new one.", nil)
	}

	ch, err := b.content.Character(charID)
	if err != nil {
		return err
	}

	correct := option == q.CorrectIndex
	now := b.now()
	progress, err := b.progress.Apply(ctx, LearnerID(chatID), charID, func(p *models.CharacterProgress) {
		spaced_repetition.UpdateScore(p, correct, now)
	})
	if err != nil {
		return err
	}

	var text string
	if correct {
		text = fmt.Sprintf("✅ Correct! %s is %q.", ch.Glyph, ch.Romanization)
	} else {
		text = fmt.Sprintf("❌ Not quite. %s is %q, not %q.", ch.Glyph, ch.Romanization, q.Options[option])
	}
	text += fmt.Sprintf("\nStrength: %d/100 (%s)", progress.Strength, progress.Status)

	keyboard := createKeyboard([][]MenuButton{{{Text: "➡️ Next", CallbackData: callbackPractice}}})
	return b.send(chatID, text, &keyboard)
}
