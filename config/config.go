package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"checkout-relay-backend/pkg/telegram"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBlockFields are the checkout fields that must never leave the server
var DefaultBlockFields = []string{"card-number", "cvv", "expiry-month", "expiry-year"}

type Config struct {
	Port        string `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"`
	LogLevel    string `yaml:"log_level"`
	// Telegram relay
	TelegramBotToken         string   `yaml:"telegram_bot_token"`
	TelegramChatID           string   `yaml:"telegram_chat_id"`
	TelegramAPIBase          string   `yaml:"telegram_api_base"`
	TelegramTimeoutSeconds   int      `yaml:"telegram_timeout_seconds"`
	TelegramDisableMultipart bool     `yaml:"telegram_disable_multipart"`
	TitlePrefix              string   `yaml:"title_prefix"`
	BlockFields              []string `yaml:"block_fields"`
	// Redis/Upstash Configuration
	UpstashRedisURL      string `yaml:"upstash_redis_url"`
	UpstashRedisPassword string `yaml:"upstash_redis_password"`
	// Rate Limiting Configuration
	RateLimitWindowSeconds     int `yaml:"rate_limit_window_seconds"`
	RateLimitSubmitThreshold   int `yaml:"rate_limit_submit_threshold"`
	RateLimitCheckoutThreshold int `yaml:"rate_limit_checkout_threshold"`
}

// LoadConfig reads .env (if present), then the YAML file named by CONFIG_FILE
// (if set), then environment variables. Later layers win.
func LoadConfig() (*Config, error) {
	// .env is a local convenience; a missing file is fine
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Port:                       "8080",
		FrontendURL:                "http://localhost:3000",
		LogLevel:                   "info",
		TelegramAPIBase:            "https://api.telegram.org",
		TelegramTimeoutSeconds:     10,
		TitlePrefix:                "Website Form",
		BlockFields:                append([]string(nil), DefaultBlockFields...),
		RateLimitWindowSeconds:     60,  // 1 minute window
		RateLimitSubmitThreshold:   10,  // 10 submissions per window
		RateLimitCheckoutThreshold: 100, // 100 checkout requests per window
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.FrontendURL = strings.TrimRight(getEnv("FRONTEND_URL", c.FrontendURL), "/")
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))

	c.TelegramBotToken = strings.TrimSpace(getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken))
	c.TelegramChatID = strings.TrimSpace(getEnv("TELEGRAM_CHAT_ID", c.TelegramChatID))
	c.TelegramAPIBase = strings.TrimRight(getEnv("TELEGRAM_API_BASE", c.TelegramAPIBase), "/")
	c.TelegramTimeoutSeconds = getEnvInt("TELEGRAM_TIMEOUT_SECONDS", c.TelegramTimeoutSeconds)
	c.TelegramDisableMultipart = getEnvBool("TELEGRAM_DISABLE_MULTIPART", c.TelegramDisableMultipart)
	c.TitlePrefix = getEnv("TITLE_PREFIX", c.TitlePrefix)
	if v, ok := os.LookupEnv("BLOCK_FIELDS"); ok {
		c.BlockFields = splitList(v)
	}

	c.UpstashRedisURL = getEnv("UPSTASH_REDIS_URL", c.UpstashRedisURL)
	c.UpstashRedisPassword = getEnv("UPSTASH_REDIS_PASSWORD", c.UpstashRedisPassword)

	c.RateLimitWindowSeconds = getEnvInt("RATE_LIMIT_WINDOW_SECONDS", c.RateLimitWindowSeconds)
	c.RateLimitSubmitThreshold = getEnvInt("RATE_LIMIT_SUBMIT_THRESHOLD", c.RateLimitSubmitThreshold)
	c.RateLimitCheckoutThreshold = getEnvInt("RATE_LIMIT_CHECKOUT_THRESHOLD", c.RateLimitCheckoutThreshold)
}

// Validate rejects missing or placeholder relay credentials and an empty
// block-list. Every problem is reported at once.
func (c *Config) Validate() error {
	var errs []error
	if telegram.IsPlaceholder(c.TelegramBotToken) {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN is missing or still a placeholder"))
	}
	if telegram.IsPlaceholder(c.TelegramChatID) {
		errs = append(errs, errors.New("TELEGRAM_CHAT_ID is missing or still a placeholder"))
	}
	if len(splitList(strings.Join(c.BlockFields, ","))) == 0 {
		errs = append(errs, errors.New("BLOCK_FIELDS must name at least one field"))
	}
	if c.TelegramTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("TELEGRAM_TIMEOUT_SECONDS must be positive"))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
