package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Backend API
	APIBaseURL    string
	FilesBaseURL  string
	APITimeout    time.Duration
	ScrapeTimeout time.Duration

	// Query engine
	SuggestDebounce time.Duration
	SuggestLimit    int
	DefaultMaxPages int

	// Storage (optional)
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Watcher
	TelegramToken  string
	TelegramChatID int64
	WatchCron      string
	WatchProfile   string

	// Logging
	LogLevel string
}

func Load() (*Config, error) {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	cfg := &Config{
		// Defaults
		APIBaseURL:      "http://localhost:8000/api",
		APITimeout:      30 * time.Second,
		ScrapeTimeout:   15 * time.Minute,
		SuggestDebounce: 200 * time.Millisecond,
		SuggestLimit:    8,
		DefaultMaxPages: 10,
		WatchCron:       "0 8 * * *",
		WatchProfile:    "default",
		LogLevel:        "info",
	}

	if baseURL := os.Getenv("JOBWATCH_API_URL"); baseURL != "" {
		cfg.APIBaseURL = strings.TrimRight(baseURL, "/")
	}

	if filesURL := os.Getenv("JOBWATCH_FILES_URL"); filesURL != "" {
		cfg.FilesBaseURL = strings.TrimRight(filesURL, "/")
	} else {
		cfg.FilesBaseURL = strings.TrimSuffix(cfg.APIBaseURL, "/api")
	}

	if timeout := os.Getenv("JOBWATCH_API_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid JOBWATCH_API_TIMEOUT: %w", err)
		}
		cfg.APITimeout = d
	}

	if timeout := os.Getenv("JOBWATCH_SCRAPE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid JOBWATCH_SCRAPE_TIMEOUT: %w", err)
		}
		cfg.ScrapeTimeout = d
	}

	if debounce := os.Getenv("SUGGEST_DEBOUNCE"); debounce != "" {
		d, err := time.ParseDuration(debounce)
		if err != nil {
			return nil, fmt.Errorf("invalid SUGGEST_DEBOUNCE: %w", err)
		}
		cfg.SuggestDebounce = d
	}

	if limit := os.Getenv("SUGGEST_LIMIT"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid SUGGEST_LIMIT: %w", err)
		}
		cfg.SuggestLimit = n
	}

	if pages := os.Getenv("SEARCH_MAX_PAGES"); pages != "" {
		n, err := strconv.Atoi(pages)
		if err != nil {
			return nil, fmt.Errorf("invalid SEARCH_MAX_PAGES: %w", err)
		}
		cfg.DefaultMaxPages = n
	}

	cfg.PostgresDSN = os.Getenv("POSTGRES_DSN")
	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		db, err := strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
		cfg.TelegramChatID = id
	}

	if spec := os.Getenv("WATCH_CRON"); spec != "" {
		cfg.WatchCron = spec
	}

	if profile := os.Getenv("WATCH_PROFILE"); profile != "" {
		cfg.WatchProfile = profile
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("api base URL is empty")
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("api timeout must be positive: %v", c.APITimeout)
	}

	if c.ScrapeTimeout <= 0 {
		return fmt.Errorf("scrape timeout must be positive: %v", c.ScrapeTimeout)
	}

	if c.SuggestDebounce < 0 {
		return fmt.Errorf("suggest debounce must not be negative: %v", c.SuggestDebounce)
	}

	if c.SuggestLimit < 1 || c.SuggestLimit > 50 {
		return fmt.Errorf("suggest limit must be between 1 and 50")
	}

	if c.DefaultMaxPages < 1 || c.DefaultMaxPages > 50 {
		return fmt.Errorf("max pages must be between 1 and 50")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// ValidateWatch checks the settings the watcher needs on top of Validate.
func (c *Config) ValidateWatch() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for watch")
	}

	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required for watch")
	}

	if c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required for watch")
	}

	if c.WatchCron == "" {
		return fmt.Errorf("watch cron spec is empty")
	}

	return nil
}
