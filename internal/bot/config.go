package bot

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Number of answer buttons per drill
	OptionsPerQuestion int
	// Reminder hour (UTC) for new subscribers
	DefaultReminderHour int
	// Long polling timeout in seconds
	UpdateTimeout int
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		OptionsPerQuestion:  4,
		DefaultReminderHour: 9,
		UpdateTimeout:       60,
	}
}
