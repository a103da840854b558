package common

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Lark    LarkConfig    `yaml:"lark"`
	Archive ArchiveConfig `yaml:"archive"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	WebhookPath       string        `yaml:"webhook_path"`
	VerificationToken string        `yaml:"verification_token"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	Environment       string        `yaml:"environment"`
}

// LarkConfig holds Lark open-platform credentials and the target table.
type LarkConfig struct {
	BaseURL   string        `yaml:"base_url"`
	AppID     string        `yaml:"app_id"`
	AppSecret string        `yaml:"app_secret"`
	BaseToken string        `yaml:"base_token"`
	TableID   string        `yaml:"table_id"`
	Timeout   time.Duration `yaml:"timeout"`
}

// ArchiveConfig holds the local archive database settings.
type ArchiveConfig struct {
	Path string `yaml:"path"`
}

// LoadConfig loads configuration from environment variables. When
// CONFIG_FILE points at a YAML file, its values are loaded first and
// environment variables override them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			WebhookPath:  "/webhook/lark-mail",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			Environment:  "development",
		},
		Lark: LarkConfig{
			BaseURL: "https://open.larksuite.com/open-apis",
			Timeout: 30 * time.Second,
		},
		Archive: ArchiveConfig{
			Path: "reservemail.db",
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError("CONFIG_ERROR", "reading config file", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "parsing config file", err)
		}
	}

	cfg.Server.Addr = getEnv("SERVER_ADDR", cfg.Server.Addr)
	cfg.Server.WebhookPath = getEnv("WEBHOOK_PATH", cfg.Server.WebhookPath)
	cfg.Server.VerificationToken = getEnv("VERIFICATION_TOKEN", cfg.Server.VerificationToken)
	cfg.Server.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.Environment = getEnv("ENVIRONMENT", cfg.Server.Environment)

	cfg.Lark.BaseURL = getEnv("LARK_BASE_URL", cfg.Lark.BaseURL)
	cfg.Lark.AppID = getEnv("LARK_APP_ID", cfg.Lark.AppID)
	cfg.Lark.AppSecret = getEnv("LARK_APP_SECRET", cfg.Lark.AppSecret)
	cfg.Lark.BaseToken = getEnv("LARK_BASE_TOKEN", cfg.Lark.BaseToken)
	cfg.Lark.TableID = getEnv("LARK_TABLE_ID", cfg.Lark.TableID)
	cfg.Lark.Timeout = getEnvAsDuration("LARK_TIMEOUT", cfg.Lark.Timeout)

	cfg.Archive.Path = getEnv("ARCHIVE_PATH", cfg.Archive.Path)

	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Lark.AppID == "" {
		return NewAppError("CONFIG_ERROR", "LARK_APP_ID is required", ErrInvalidInput)
	}
	if c.Lark.AppSecret == "" {
		return NewAppError("CONFIG_ERROR", "LARK_APP_SECRET is required", ErrInvalidInput)
	}
	if c.Lark.BaseToken == "" {
		return NewAppError("CONFIG_ERROR", "LARK_BASE_TOKEN is required", ErrInvalidInput)
	}
	if c.Lark.TableID == "" {
		return NewAppError("CONFIG_ERROR", "LARK_TABLE_ID is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "SERVER_ADDR is required", ErrInvalidInput)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
