package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	DatabaseURL         string
	HistoryDBPath       string
	JWTSecret           string
	StoragePath         string
	StorageBaseURL      string
	AssetsDir           string
	TemplateCatalogPath string
	GeoIPDBPath         string
	TTSBaseURL          string
	StripeSecretKey     string
	StripePriceID       string
	FFmpegPath          string
	CORSAllowedOrigins  []string
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	RateLimitPerMin     int
	MaxCompositions     int
	JobRetention        time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	port := getEnv("PORT", "8080")
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                port,
		DatabaseURL:         strings.TrimSpace(os.Getenv("DATABASE_URL")),
		HistoryDBPath:       getEnv("HISTORY_DB_PATH", "./storage/history.db"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		StoragePath:         getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL:      getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%s/static", port)),
		AssetsDir:           getEnv("ASSETS_DIR", "./public"),
		TemplateCatalogPath: os.Getenv("TEMPLATE_CATALOG_PATH"),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		TTSBaseURL:          getEnv("TTS_BASE_URL", "https://translate.google.com"),
		StripeSecretKey:     strings.TrimSpace(os.Getenv("STRIPE_SECRET_KEY")),
		StripePriceID:       strings.TrimSpace(os.Getenv("STRIPE_PRICE_ID")),
		FFmpegPath:          getEnv("FFMPEG_PATH", "ffmpeg"),
		CORSAllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		MaxCompositions:     getEnvInt("MAX_COMPOSITIONS", 2),
		JobRetention:        time.Minute * time.Duration(getEnvInt("COMPOSITION_RETENTION_MINUTES", 60)),
	}

	if cfg.RateLimitPerMin <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if cfg.MaxCompositions <= 0 {
		return nil, fmt.Errorf("MAX_COMPOSITIONS must be positive")
	}
	if cfg.JobRetention < 0 {
		return nil, fmt.Errorf("COMPOSITION_RETENTION_MINUTES must not be negative")
	}

	return cfg, nil
}

// BillingConfigured reports whether both payment provider credentials are present.
func (c *Config) BillingConfigured() bool {
	return c.StripeSecretKey != "" && c.StripePriceID != ""
}

// AuthEnabled reports whether bearer tokens can be verified.
func (c *Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
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
