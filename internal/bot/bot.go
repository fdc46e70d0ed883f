// Package bot runs character drills and practice reminders over Telegram.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/sinhala/internal/content"
	"github.com/example/sinhala/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data prefixes
const (
	callbackAnswer   = "ans:"
	callbackPractice = "practice"
	callbackProgress = "progress"
)

// ErrNoToken is returned when the bot is created without a token
var ErrNoToken = errors.New("telegram bot token is not set")

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ProgressStore persists character progress
type ProgressStore interface {
	ListByLearner(ctx context.Context, learnerID string) ([]models.CharacterProgress, error)
	Apply(ctx context.Context, learnerID, charID string, fn func(*models.CharacterProgress)) (*models.CharacterProgress, error)
}

// SubscriberStore persists reminder subscriptions
type SubscriberStore interface {
	Subscribe(ctx context.Context, sub *models.Subscriber) error
	SetEnabled(ctx context.Context, chatID int64, enabled bool) error
	SetReminderHour(ctx context.Context, chatID int64, hour int) error
}

// Deps are the bot's collaborators
type Deps struct {
	Content     *content.Store
	Progress    ProgressStore
	Subscribers SubscriberStore
	Config      *BotConfig
}

// pendingQuestion is the drill a chat is currently answering
type pendingQuestion struct {
	CharID       string
	Options      []string
	CorrectIndex int
}

// Bot represents the Telegram bot application
type Bot struct {
	api         sender
	botAPI      *tgbotapi.BotAPI
	token       string
	content     *content.Store
	progress    ProgressStore
	subscribers SubscriberStore
	config      *BotConfig

	mu      sync.Mutex
	pending map[int64]pendingQuestion
	rnd     *rand.Rand
	now     func() time.Time
}

// New creates a new bot instance
func New(token string, deps Deps) (*Bot, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	b := newBot(deps)
	b.token = token
	return b, nil
}

func newBot(deps Deps) *Bot {
	cfg := deps.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Bot{
		content:     deps.Content,
		progress:    deps.Progress,
		subscribers: deps.Subscribers,
		config:      cfg,
		pending:     make(map[int64]pendingQuestion),
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.botAPI = botAPI
	b.api = botAPI
	log.Printf("Authorized on account %s", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.Stop()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			// Обрабатываем по одному: у чата может быть только один активный вопрос
			if err := b.handleUpdate(ctx, update); err != nil {
				log.Printf("Error handling update %d: %v", update.UpdateID, err)
			}
		}
	}
}

// Stop stops polling for updates
func (b *Bot) Stop() {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	log.Println("Bot stopped")
}

// SendReminders implements the scheduler.Notifier interface
func (b *Bot) SendReminders(chatID int64, count int) error {
	if b.api == nil {
		return errors.New("bot is not started")
	}

	word := "characters"
	if count == 1 {
		word = "character"
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"You have %d %s left to master. Tap Practice to keep your streak going!", count, word))
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())

	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending reminder to chat %d: %v", chatID, err)
		return err
	}
	log.Printf("Successfully sent reminder to chat %d for %d characters", chatID, count)
	return nil
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🎯 Practice", CallbackData: callbackPractice},
			{Text: "📊 Progress", CallbackData: callbackProgress},
		},
	}
}

// LearnerID maps a chat to the learner id its progress is stored under
func LearnerID(chatID int64) string {
	return "tg-" + strconv.FormatInt(chatID, 10)
}

func answerData(charID string, option int) string {
	return callbackAnswer + charID + ":" + strconv.Itoa(option)
}

// parseAnswerData splits "ans:<charID>:<option>"
func parseAnswerData(data string) (string, int, bool) {
	rest, ok := strings.CutPrefix(data, callbackAnswer)
	if !ok {
		return "", 0, false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 {
		return "", 0, false
	}
	option, err := strconv.Atoi(rest[i+1:])
	if err != nil || option < 0 {
		return "", 0, false
	}
	return rest[:i], option, true
}

func (b *Bot) send(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = *keyboard
	}
	_, err := b.api.Send(msg)
	return err
}
