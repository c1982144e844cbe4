package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// admin UI
	ServerPort    string        `env:"SERVER_PORT" envDefault:"8080"`
	SessionSecret string        `env:"SESSION_SECRET"`
	APIBaseURL    string        `env:"API_BASE_URL" envDefault:"http://localhost:5000"`
	APITimeout    time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
	PageSize      int           `env:"PAGE_SIZE" envDefault:"10"`

	// reference API
	APIPort       string        `env:"API_PORT" envDefault:"5000"`
	DBDSN         string        `env:"DB_DSN"`
	JWTSecret     string        `env:"JWT_SECRET"`
	TokenTTL      time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	AdminUsername string        `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string        `env:"ADMIN_PASSWORD" envDefault:"Admin123!"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:8080"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	return cfg, nil
}

func (c *Config) ValidateUI() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is not set")
	}
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is not set")
	}
	return nil
}

func (c *Config) ValidateAPI() error {
	if c.DBDSN == "" {
		return errors.New("DB_DSN is not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	return nil
}

func (c *Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}
