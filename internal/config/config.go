package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port           string        `mapstructure:"PORT"`
	DatabaseDriver string        `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTL         time.Duration `mapstructure:"JWT_TTL"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	CORSOrigins    string        `mapstructure:"CORS_ORIGINS"`

	// DefaultGroupName is the group room every approved member is attached to.
	DefaultGroupName string `mapstructure:"DEFAULT_GROUP_NAME"`

	MessageRatePerMinute int `mapstructure:"MESSAGE_RATE_PER_MINUTE"`
	MessageRateBurst     int `mapstructure:"MESSAGE_RATE_BURST"`
	FanoutBuffer         int `mapstructure:"FANOUT_BUFFER"`
}

var defaults = map[string]any{
	"PORT":                    "8080",
	"DATABASE_DRIVER":         "postgres",
	"DATABASE_URL":            "",
	"JWT_SECRET":              "",
	"JWT_TTL":                 "168h",
	"REDIS_URL":               "",
	"LOG_LEVEL":               "info",
	"CORS_ORIGINS":            "*",
	"DEFAULT_GROUP_NAME":      "General Sellers Chat",
	"MESSAGE_RATE_PER_MINUTE": 60,
	"MESSAGE_RATE_BURST":      10,
	"FANOUT_BUFFER":           1024,
}

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")

	// Unmarshal only sees env-only keys that viper already knows about.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		slog.Warn("config: .env file not found, loading from environment variables")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration that would keep the server from starting.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET must be set")
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return errors.New("config: DATABASE_DRIVER must be postgres or sqlite")
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL must be set")
	}
	return nil
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
