package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration values for the bot
type Config struct {
	// Discord
	DiscordToken         string
	DiscordApplicationID string

	// Database
	DatabasePath string

	// Session creation drafts expire after this long
	DraftTTL time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DiscordToken:         os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordApplicationID: os.Getenv("DISCORD_APPLICATION_ID"),
		DatabasePath:         getEnvOrDefault("DATABASE_PATH", "./data/scrimbot.db"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
	}

	// Parse draft lifetime
	ttlStr := getEnvOrDefault("DRAFT_TTL_SECONDS", "300")
	ttl, err := strconv.Atoi(ttlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DRAFT_TTL_SECONDS: %w", err)
	}
	cfg.DraftTTL = time.Duration(ttl) * time.Second

	// Validate required fields
	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
