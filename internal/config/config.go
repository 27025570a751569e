package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMenuSourceURL is the CROUS restaurant page the scraper reads.
const DefaultMenuSourceURL = "https://www.crous-bordeaux.fr/restaurant/resto-u-le-capu-3/"

// DefaultDatabasePath is used when DATABASE_PATH is unset.
const DefaultDatabasePath = "data/restou.db"

// Config holds the configuration for the application.
type Config struct {
	JWTSecret    string
	DatabasePath string
	Port         string
	Production   bool

	// Scraper Config
	MenuSourceURL string
	SnapshotPath  string
	HTTPTimeout   time.Duration

	// Telegram Config (optional, scrape notifications)
	TelegramBotToken string
	TelegramChatID   int64
}

// NewFromEnv creates a new Config object from environment variables.
// A .env file in the working directory is loaded first when present.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	timeout := 30 * time.Second
	if raw := os.Getenv("HTTP_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("HTTP_TIMEOUT_SECONDS must be a positive integer, got %q", raw)
		}
		timeout = time.Duration(secs) * time.Second
	}

	var telegramChatID int64
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer, got %q", raw)
		}
		telegramChatID = id
	}

	return &Config{
		JWTSecret:        jwtSecret,
		DatabasePath:     DatabasePathFromEnv(),
		Port:             getEnv("PORT", "8080"),
		Production:       os.Getenv("APP_ENV") == "production",
		MenuSourceURL:    getEnv("MENU_SOURCE_URL", DefaultMenuSourceURL),
		SnapshotPath:     getEnv("SNAPSHOT_PATH", "data/snapshots"),
		HTTPTimeout:      timeout,
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   telegramChatID,
	}, nil
}

// DatabasePathFromEnv resolves the database location without requiring the
// rest of the configuration, for maintenance commands.
func DatabasePathFromEnv() string {
	_ = godotenv.Load()
	return getEnv("DATABASE_PATH", DefaultDatabasePath)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
