package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config keeps runtime settings for the service.
type Config struct {
	DatabaseURL string
	HTTPAddr    string

	PlacesAPIKey  string
	PlacesBaseURL string
	PlacesTimeout time.Duration
	CacheTTL      time.Duration
	PruneInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ElasticURL   string
	ElasticIndex string

	TelegramToken string

	DefaultUsername string
	DefaultEmail    string
	DefaultPassword string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DATABASE_URL", "placeminder.db")
	v.SetDefault("HTTP_ADDR", ":5000")
	v.SetDefault("GOOGLE_PLACES_API_KEY", "")
	v.SetDefault("PLACES_BASE_URL", "")
	v.SetDefault("PLACES_TIMEOUT", "10s")
	v.SetDefault("PLACES_CACHE_TTL", "5m")
	v.SetDefault("CACHE_PRUNE_INTERVAL", "10m")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ELASTIC_URL", "")
	v.SetDefault("ELASTIC_INDEX", "places")
	v.SetDefault("TELEGRAM_TOKEN", "")
	v.SetDefault("DEFAULT_USERNAME", "testuser")
	v.SetDefault("DEFAULT_EMAIL", "test@example.com")
	v.SetDefault("DEFAULT_PASSWORD", "test")
}

// Load reads .env (if present), the environment and, when CONFIG_FILE is set,
// a YAML file. Environment variables win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return LoadFrom(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
}

// LoadFrom is Load without .env handling. An empty path skips the file.
func LoadFrom(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := Config{
		DatabaseURL:     strings.TrimSpace(v.GetString("DATABASE_URL")),
		HTTPAddr:        strings.TrimSpace(v.GetString("HTTP_ADDR")),
		PlacesAPIKey:    strings.TrimSpace(v.GetString("GOOGLE_PLACES_API_KEY")),
		PlacesBaseURL:   strings.TrimSpace(v.GetString("PLACES_BASE_URL")),
		PlacesTimeout:   v.GetDuration("PLACES_TIMEOUT"),
		CacheTTL:        v.GetDuration("PLACES_CACHE_TTL"),
		PruneInterval:   v.GetDuration("CACHE_PRUNE_INTERVAL"),
		RedisAddr:       strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		ElasticURL:      strings.TrimSpace(v.GetString("ELASTIC_URL")),
		ElasticIndex:    strings.TrimSpace(v.GetString("ELASTIC_INDEX")),
		TelegramToken:   strings.TrimSpace(v.GetString("TELEGRAM_TOKEN")),
		DefaultUsername: strings.TrimSpace(v.GetString("DEFAULT_USERNAME")),
		DefaultEmail:    strings.TrimSpace(v.GetString("DEFAULT_EMAIL")),
		DefaultPassword: v.GetString("DEFAULT_PASSWORD"),
	}

	if cfg.PlacesTimeout <= 0 {
		return cfg, fmt.Errorf("PLACES_TIMEOUT must be positive")
	}
	if cfg.CacheTTL < 0 {
		return cfg, fmt.Errorf("PLACES_CACHE_TTL must not be negative")
	}
	if cfg.DefaultUsername == "" {
		return cfg, fmt.Errorf("DEFAULT_USERNAME is required")
	}

	return cfg, nil
}
