package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port               string `validate:"required,numeric"`
	DatabaseURL        string `validate:"required"`
	AppEnv             string `validate:"oneof=local development staging production test"`
	BaseURL            string `validate:"required,url"`
	TikTokClientKey    string
	TikTokClientSecret string
	TikTokRedirectURL  string `validate:"omitempty,url"`
	TikTokAuthURL      string `validate:"required,url"`
	TikTokAPIBaseURL   string `validate:"required,url"`
	JWTSecret          string `validate:"required"`
	FrontendURL        string `validate:"required,url"`
	DefaultTimezone    string `validate:"required,timezone"`
	UptimeWindowDays   int    `validate:"min=1,max=365"`
	MaxVideos          int    `validate:"min=1,max=1000"`
	LogLevel           string `validate:"oneof=trace debug info warn error"`
	LogPretty          bool
	APIRateLimit       int `validate:"min=0"` // requests per minute per IP, 0 disables
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:db.sqlite"),
		AppEnv:             getEnv("APP_ENV", "local"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		TikTokClientKey:    getEnv("TIKTOK_CLIENT_KEY", ""),
		TikTokClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),
		TikTokRedirectURL:  getEnv("TIKTOK_REDIRECT_URL", "http://localhost:8080/auth/tiktok/callback"),
		TikTokAuthURL:      getEnv("TIKTOK_AUTH_URL", "https://www.tiktok.com"),
		TikTokAPIBaseURL:   getEnv("TIKTOK_API_BASE_URL", "https://open.tiktokapis.com"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:8080/dashboard"),
		DefaultTimezone:    getEnv("DEFAULT_TIMEZONE", "UTC"),
		UptimeWindowDays:   getEnvInt("UPTIME_WINDOW_DAYS", 30),
		MaxVideos:          getEnvInt("MAX_VIDEOS", 100),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogPretty:          getEnvBool("LOG_PRETTY", false),
		APIRateLimit:       getEnvInt("API_RATE_LIMIT", 120),
	}
}

// Validate checks the loaded values before anything is wired up.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location returns the default timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}
