package config

import (
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the configuration of the service
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	// Тип БД: sqlite или postgres
	DBType      string `env:"DB_TYPE" envDefault:"sqlite"`
	DBPath      string `env:"DB_PATH" envDefault:"data/sinhala.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	ContentDir    string `env:"CONTENT_DIR" envDefault:"content"`
	StaticDir     string `env:"STATIC_DIR" envDefault:"web"`
	GlyphFontPath string `env:"GLYPH_FONT_PATH"` // Empty uses the built-in Go font

	TelegramToken       string `env:"TELEGRAM_BOT_TOKEN"`
	EnableScheduler     bool   `env:"ENABLE_SCHEDULER" envDefault:"true"`
	DefaultReminderHour int    `env:"DEFAULT_REMINDER_HOUR" envDefault:"9"`
}

// DataSource returns the driver source for the configured database type
func (c *Config) DataSource() string {
	if c.DBType == "postgres" {
		return c.DatabaseURL
	}
	return c.DBPath
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file, using environment variables: %v", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the env tags cannot express
func (c *Config) Validate() error {
	if c.DefaultReminderHour < 0 || c.DefaultReminderHour > 23 {
		return fmt.Errorf("DEFAULT_REMINDER_HOUR must be 0-23, got %d", c.DefaultReminderHour)
	}
	switch c.DBType {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("DB_TYPE must be sqlite or postgres, got %q", c.DBType)
	}
	if c.DBType == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required when DB_TYPE=postgres")
	}
	return nil
}
