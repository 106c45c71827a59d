package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: empty URL disables persistence)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Price history
	Yahoo  YahooConfig
	Series SeriesConfig

	// News
	News NewsConfig

	// Sentiment
	SentimentLexiconPath string

	// Watchlist
	Watchlist         []string
	WatchlistSchedule string

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// YahooConfig holds Yahoo Finance endpoint configuration
type YahooConfig struct {
	BaseURL    string // JSON API host (spark, chart)
	SiteURL    string // HTML site host (history page)
	Timeout    time.Duration
	RatePerSec int // 0 disables local rate limiting
}

// SeriesConfig holds the price series search policy
type SeriesConfig struct {
	MaxRetries int
	RetryUnit  time.Duration
}

// NewsConfig holds upstream news source configuration
type NewsConfig struct {
	WebhookURL string
	APIKey     string
	Timeout    time.Duration
	RSSURL     string
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Yahoo: YahooConfig{
			BaseURL:    getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			SiteURL:    getEnv("YAHOO_SITE_URL", "https://finance.yahoo.com"),
			Timeout:    getEnvAsDuration("YAHOO_TIMEOUT", "15s"),
			RatePerSec: getEnvAsInt("YAHOO_RATE_PER_SEC", 5),
		},

		Series: SeriesConfig{
			MaxRetries: getEnvAsInt("SERIES_MAX_RETRIES", 2),
			RetryUnit:  getEnvAsDuration("SERIES_RETRY_UNIT", "1s"),
		},

		News: NewsConfig{
			WebhookURL: strings.TrimRight(getEnv("NEWS_WEBHOOK_URL", ""), "/"),
			APIKey:     getEnv("NEWS_API_KEY", ""),
			Timeout:    getEnvAsDuration("NEWS_TIMEOUT", "30s"),
			RSSURL:     getEnv("NEWS_RSS_URL", "https://feeds.finance.yahoo.com/rss/2.0/headline"),
		},

		SentimentLexiconPath: getEnv("SENTIMENT_LEXICON_PATH", ""),

		Watchlist:         getEnvAsList("WATCHLIST"),
		WatchlistSchedule: getEnv("WATCHLIST_SCHEDULE", "0 30 16 * * 1-5"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Series.MaxRetries < 0 {
		return fmt.Errorf("SERIES_MAX_RETRIES must be >= 0, got %d", c.Series.MaxRetries)
	}

	if c.Series.RetryUnit < 0 {
		return fmt.Errorf("SERIES_RETRY_UNIT must be >= 0")
	}

	// 외부 호출은 반드시 타임아웃을 가진다
	if c.Yahoo.Timeout <= 0 || c.News.Timeout <= 0 {
		return fmt.Errorf("YAHOO_TIMEOUT and NEWS_TIMEOUT must be positive")
	}

	if c.Yahoo.RatePerSec < 0 {
		return fmt.Errorf("YAHOO_RATE_PER_SEC must be >= 0, got %d", c.Yahoo.RatePerSec)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, upper-cases and drops blanks
func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
