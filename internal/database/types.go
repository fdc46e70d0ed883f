package database

import "errors"

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrUnknownPreference is returned for preference keys the app does not use
var ErrUnknownPreference = errors.New("unknown preference key")

// Ключи, которые браузерное приложение хранило в localStorage
const (
	PrefLayoutMode      = "layoutMode"
	PrefTheme           = "theme"
	PrefDesignPositions = "designer:positions:v1"
)

// AllowedPreferenceKeys lists the preference keys that can be stored
var AllowedPreferenceKeys = map[string]bool{
	PrefLayoutMode:      true,
	PrefTheme:           true,
	PrefDesignPositions: true,
}
