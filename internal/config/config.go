// Package config loads runtime settings from environment variables and an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "secretKey123"

// Config holds all runtime configuration. Every field maps 1:1 to an env var.
type Config struct {
	// Server
	Port      string `mapstructure:"APP_PORT"`
	Env       string `mapstructure:"APP_ENV"` // development | production
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	StaticDir string `mapstructure:"STATIC_DIR"`

	// Database
	DBDriver    string `mapstructure:"DB_DRIVER"` // sqlite | postgres | memory
	DatabaseDSN string `mapstructure:"DATABASE_DSN"`

	// Auth
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	TokenTTL       time.Duration `mapstructure:"TOKEN_TTL"`
	AdminUsername  string        `mapstructure:"ADMIN_USERNAME"`
	AdminPassword  string        `mapstructure:"ADMIN_PASSWORD"`
	LoginRateLimit int           `mapstructure:"LOGIN_RATE_LIMIT"` // attempts per minute per IP

	// Messaging
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue string `mapstructure:"RABBITMQ_QUEUE"`

	// Redis backs the login limiter when set.
	RedisURL string `mapstructure:"REDIS_URL"`

	// SMTP for low stock alerts
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	AlertEmail   string `mapstructure:"ALERT_EMAIL"`
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// UsesDefaultSecret reports whether the token signing secret is the development fallback.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// MailEnabled reports whether low stock alerts can be mailed.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.AlertEmail != ""
}

// Load reads configuration from the environment (and .env in the working directory, if present).
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", ":5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STATIC_DIR", "")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "apex_inventory.db")
	v.SetDefault("JWT_SECRET", DefaultJWTSecret)
	v.SetDefault("TOKEN_TTL", time.Hour)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin123")
	v.SetDefault("LOGIN_RATE_LIMIT", 20)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "inventory_events")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("ALERT_EMAIL", "")

	// Optional .env file for local development; a missing file is fine.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.IsProduction() && cfg.UsesDefaultSecret() {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	switch cfg.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}
