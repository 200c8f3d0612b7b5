package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings of the service.
type Config struct {
	AppPort string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret string
	TokenTTL  time.Duration

	RabbitMQURL string

	RedisURL   string
	RateLimit  int
	RateWindow time.Duration

	LogLevel  string
	LogFormat string

	MinCookingTime int
	PageSize       int

	ShoppingListFilename    string
	ShoppingListContentType string

	MediaBackend string
	MediaRoot    string
	MediaURL     string
	S3Bucket     string
	AWSRegion    string
}

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "foodgram.db?_foreign_keys=on")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RATE_LIMIT", 60)
	v.SetDefault("RATE_WINDOW", "1m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MIN_COOKING_TIME", 1)
	v.SetDefault("PAGE_SIZE", 6)
	v.SetDefault("SHOPPING_LIST_FILENAME", "shopping_list.txt")
	v.SetDefault("SHOPPING_LIST_CONTENT_TYPE", "text/plain")
	v.SetDefault("MEDIA_BACKEND", "local")
	v.SetDefault("MEDIA_ROOT", "media")
	v.SetDefault("MEDIA_URL", "/media")
	v.SetDefault("S3_BUCKET", "foodgram-media")
	v.SetDefault("AWS_REGION", "eu-central-1")
}

// Load reads configuration from the environment on top of the defaults.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:                 v.GetString("APP_PORT"),
		DatabaseDriver:          v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:             v.GetString("DATABASE_DSN"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		TokenTTL:                v.GetDuration("TOKEN_TTL"),
		RabbitMQURL:             v.GetString("RABBITMQ_URL"),
		RedisURL:                v.GetString("REDIS_URL"),
		RateLimit:               v.GetInt("RATE_LIMIT"),
		RateWindow:              v.GetDuration("RATE_WINDOW"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		LogFormat:               v.GetString("LOG_FORMAT"),
		MinCookingTime:          v.GetInt("MIN_COOKING_TIME"),
		PageSize:                v.GetInt("PAGE_SIZE"),
		ShoppingListFilename:    v.GetString("SHOPPING_LIST_FILENAME"),
		ShoppingListContentType: v.GetString("SHOPPING_LIST_CONTENT_TYPE"),
		MediaBackend:            v.GetString("MEDIA_BACKEND"),
		MediaRoot:               v.GetString("MEDIA_ROOT"),
		MediaURL:                v.GetString("MEDIA_URL"),
		S3Bucket:                v.GetString("S3_BUCKET"),
		AWSRegion:               v.GetString("AWS_REGION"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	switch c.MediaBackend {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported MEDIA_BACKEND %q", c.MediaBackend)
	}
	if c.MinCookingTime < 1 {
		return fmt.Errorf("MIN_COOKING_TIME must be at least 1, got %d", c.MinCookingTime)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.RedisURL != "" && (c.RateLimit < 1 || c.RateWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT and RATE_WINDOW must be positive when REDIS_URL is set")
	}
	return nil
}
