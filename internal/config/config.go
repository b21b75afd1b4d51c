// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"discovrr/internal/observability"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Env        string `mapstructure:"APP_ENV"`
	AppVersion string `mapstructure:"APP_VERSION"`
	Port       string `mapstructure:"PORT"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`
	// SessionTTLHours bounds issued session tokens.
	SessionTTLHours int `mapstructure:"SESSION_TTL_HOURS"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	// DBPath is the sqlite file (or ":memory:") used when DB_DRIVER is sqlite.
	DBPath string `mapstructure:"DB_PATH"`

	RedisURL   string `mapstructure:"REDIS_URL"`
	PersistKey string `mapstructure:"PERSIST_KEY"`

	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`
	TracingExporter string `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string `mapstructure:"OTLP_ENDPOINT"`
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// a local .env seeds the process environment; real env vars win
	if err := godotenv.Load(); err == nil {
		observability.GlobalLogger.Info("loaded environment from .env")
	}

	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// the base file is optional
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		observability.GlobalLogger.Info("loaded profile-specific configuration", "file", "config."+env+".yml")
	}

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_VERSION", "0.0.0")
	viper.SetDefault("PORT", "8375")
	viper.SetDefault("JWT_SECRET", defaultJWTSecret)
	viper.SetDefault("SESSION_TTL_HOURS", 24*7)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "discovrr")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_PATH", "discovrr.db")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("PERSIST_KEY", "persist:root")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.DBSSLMode = strings.ToLower(strings.TrimSpace(config.DBSSLMode))
	config.DBDriver = strings.ToLower(strings.TrimSpace(config.DBDriver))

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.AppVersion == "" {
		return errors.New("APP_VERSION is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	switch c.TracingExporter {
	case "", "stdout", "otlp":
	default:
		return fmt.Errorf("TRACING_EXPORTER must be stdout or otlp, got %q", c.TracingExporter)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.DBDriver == "sqlite" {
			return errors.New("DB_DRIVER sqlite is not supported in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
	} else if len(c.JWTSecret) < 32 {
		observability.GlobalLogger.Warn("JWT_SECRET is shorter than 32 characters; use a stronger secret in production")
	}

	return nil
}
