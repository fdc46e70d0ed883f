package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Поддерживаемые типы БД
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// DB is the global database connection
var DB *sqlx.DB

// Connect establishes a connection to the database.
// For sqlite the source is a file path, for postgres a connection URL.
func Connect(dbType, source string) error {
	var (
		db  *sqlx.DB
		err error
	)

	switch dbType {
	case TypeSQLite, "":
		dbType = TypeSQLite
		// Create data directory if it doesn't exist
		if dir := filepath.Dir(source); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect("sqlite3", source+"?_foreign_keys=on&_busy_timeout=5000")
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case TypePostgres:
		if source == "" {
			return fmt.Errorf("DATABASE_URL is required for postgres")
		}
		db, err = sqlx.Connect("postgres", source)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}

	DB = db

	// Initialize schema
	return initializeSchema(dbType)
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		err := DB.Close()
		DB = nil
		return err
	}
	return nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(dbType string) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if dbType == TypePostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	// Create character_progress table
	_, err := DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS character_progress (
			id %s,
			learner_id TEXT NOT NULL,
			char_id TEXT NOT NULL,
			strength INTEGER NOT NULL DEFAULT 0,
			attempts INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			consecutive_correct INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'new',
			last_practiced TIMESTAMP,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			UNIQUE(learner_id, char_id)
		)
	`, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create character_progress table: %w", err)
	}

	// Create preferences table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS preferences (
			learner_id TEXT NOT NULL,
			pref_key TEXT NOT NULL,
			pref_value TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (learner_id, pref_key)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}

	// Create telegram_subscribers table
	_, err = DB.Exec(`
		CREATE TABLE IF NOT EXISTS telegram_subscribers (
			chat_id BIGINT PRIMARY KEY,
			learner_id TEXT NOT NULL,
			reminder_hour INTEGER NOT NULL DEFAULT 9,
			enabled BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create telegram_subscribers table: %w", err)
	}

	// Create exercise_results table
	_, err = DB.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS exercise_results (
			id %s,
			learner_id TEXT NOT NULL,
			lesson_id TEXT NOT NULL,
			exercise_id TEXT NOT NULL,
			correct BOOLEAN NOT NULL,
			answered_at TIMESTAMP NOT NULL
		)
	`, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create exercise_results table: %w", err)
	}

	return nil
}
