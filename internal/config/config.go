package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken string

	// WebDiplomacy
	WebDiplomacyURL string

	// Database
	DatabasePath string

	// Polling
	PollIntervalMinutes int

	// Fetch retry behavior
	FetchBackoffSeconds          int
	FetchBackoffMaxSeconds       int
	FetchBackoffThresholdSeconds int
	FetchMaxAttempts             int // 0 means retry forever

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:    os.Getenv("DISCORD_BOT_TOKEN"),
		WebDiplomacyURL: getEnvOrDefault("WEBDIP_BASE_URL", "https://webdiplomacy.net/"),
		DatabasePath:    getEnvOrDefault("DATABASE_PATH", "./data/svetlana.db"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
	}

	intFields := []struct {
		dst *int
		key string
		def string
	}{
		{&cfg.PollIntervalMinutes, "POLL_INTERVAL_MINUTES", "1"},
		{&cfg.FetchBackoffSeconds, "FETCH_BACKOFF_SECONDS", "1"},
		{&cfg.FetchBackoffMaxSeconds, "FETCH_BACKOFF_MAX_SECONDS", "60"},
		{&cfg.FetchBackoffThresholdSeconds, "FETCH_BACKOFF_THRESHOLD_SECONDS", "300"},
		{&cfg.FetchMaxAttempts, "FETCH_MAX_ATTEMPTS", "0"},
	}
	for _, f := range intFields {
		value, err := strconv.Atoi(getEnvOrDefault(f.key, f.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", f.key, err)
		}
		*f.dst = value
	}

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if cfg.PollIntervalMinutes <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL_MINUTES must be positive")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
