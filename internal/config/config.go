package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	API  APIConfig
	Auth AuthConfig
	App  AppConfig
}

// APIConfig points the client at the console backend.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// AuthConfig holds the credentials attached to every request. Either a
// static token or an email/password pair must be present.
type AuthConfig struct {
	Email       string
	Password    string
	StaticToken string
}

// AppConfig holds CLI-level settings.
type AppConfig struct {
	LogLevel string
	FakePort int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	config := &Config{}

	timeout, err := time.ParseDuration(getEnv("CONSOLE_API_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONSOLE_API_TIMEOUT: %w", err)
	}
	config.API = APIConfig{
		BaseURL: getEnv("CONSOLE_API_URL", "http://localhost:8080"),
		Timeout: timeout,
	}

	config.Auth = AuthConfig{
		Email:       getEnv("CONSOLE_EMAIL", ""),
		Password:    getEnv("CONSOLE_PASSWORD", ""),
		StaticToken: getEnv("CONSOLE_TOKEN", ""),
	}

	fakePort, err := strconv.Atoi(getEnv("FAKE_API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid FAKE_API_PORT: %w", err)
	}
	config.App = AppConfig{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		FakePort: fakePort,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("CONSOLE_API_URL is required")
	}
	if c.Auth.StaticToken == "" && (c.Auth.Email == "" || c.Auth.Password == "") {
		return fmt.Errorf("CONSOLE_TOKEN or CONSOLE_EMAIL and CONSOLE_PASSWORD are required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
