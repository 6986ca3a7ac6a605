// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DBPath      string
	OAuthURL    string
	ChatURL     string
	Model       string
	Scope       string
	Timeout     time.Duration
	Credential  string // long-lived authorization credential, may also be set at runtime
	Debug       bool
	InsecureTLS bool // skips certificate validation; only for isolated test environments
}

// Load reads configuration from environment variables, honoring an optional
// .env file in the working directory.
func Load() (*Config, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	timeoutSecs := getEnvInt("PSYASSIST_TIMEOUT_SECONDS", 30)

	cfg := &Config{
		DBPath:      getEnv("PSYASSIST_DB_PATH", "psyassist.db"),
		OAuthURL:    getEnv("PSYASSIST_OAUTH_URL", "https://ngw.devices.sberbank.ru:9443/api/v2/oauth"),
		ChatURL:     getEnv("PSYASSIST_CHAT_URL", "https://gigachat.devices.sberbank.ru/api/v1/chat/completions"),
		Model:       getEnv("PSYASSIST_MODEL", "GigaChat"),
		Scope:       getEnv("PSYASSIST_SCOPE", "GIGACHAT_API_PERS"),
		Timeout:     time.Duration(timeoutSecs) * time.Second,
		Credential:  getEnv("PSYASSIST_CREDENTIAL", ""),
		Debug:       getEnvBool("PSYASSIST_DEBUG", false),
		InsecureTLS: getEnvBool("PSYASSIST_INSECURE_TLS", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("PSYASSIST_DB_PATH cannot be empty")
	}
	if c.OAuthURL == "" {
		return fmt.Errorf("PSYASSIST_OAUTH_URL cannot be empty")
	}
	if c.ChatURL == "" {
		return fmt.Errorf("PSYASSIST_CHAT_URL cannot be empty")
	}
	if c.Model == "" {
		return fmt.Errorf("PSYASSIST_MODEL cannot be empty")
	}
	if c.Scope == "" {
		return fmt.Errorf("PSYASSIST_SCOPE cannot be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("PSYASSIST_TIMEOUT_SECONDS must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
