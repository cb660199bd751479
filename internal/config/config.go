package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config is the server configuration, read from the environment.
type Config struct {
	HTTPAddr           string        `env:"AVALON_HTTP_ADDR" envDefault:":8080"`
	DatabaseURL        string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns         int32         `env:"AVALON_DB_MAX_CONNS"`
	TokenSecret        string        `env:"AVALON_TOKEN_SECRET"`
	TokenTTL           time.Duration `env:"AVALON_TOKEN_TTL" envDefault:"24h"`
	LogLevel           string        `env:"AVALON_LOG_LEVEL" envDefault:"info"`
	LogPretty          bool          `env:"AVALON_LOG_PRETTY"`
	RateLimitPerMinute int           `env:"AVALON_RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	CORSOrigins        []string      `env:"AVALON_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	TimeoutPoll        time.Duration `env:"AVALON_TIMEOUT_POLL" envDefault:"1s"`
}

// devTokenSecret is used when AVALON_TOKEN_SECRET is unset.
const devTokenSecret = "dev-secret-change-in-production"

// Load reads an optional .env file and then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads Config from the current environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = devTokenSecret
	}
	if cfg.RateLimitPerMinute < 0 {
		return Config{}, fmt.Errorf("AVALON_RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if cfg.DBMaxConns < 0 {
		return Config{}, fmt.Errorf("AVALON_DB_MAX_CONNS must not be negative")
	}
	if cfg.TimeoutPoll <= 0 {
		return Config{}, fmt.Errorf("AVALON_TIMEOUT_POLL must be positive")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("AVALON_LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

// UsesDevSecret reports whether no token secret was configured.
func (c Config) UsesDevSecret() bool {
	return c.TokenSecret == devTokenSecret
}

// Level is the parsed log level.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
