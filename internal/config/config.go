package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort    string
	LogLevel      string
	LogFormat     string
	GitHubToken   string
	WebhookSecret string
	GitHubAPIURL  string
}

// HasToken reports whether a GitHub API token is configured.
func (c *Config) HasToken() bool { return c.GitHubToken != "" }

// HasWebhookSecret reports whether webhook signature checking is enabled.
func (c *Config) HasWebhookSecret() bool { return c.WebhookSecret != "" }

// LoadConfig reads configuration from environment variables and an optional
// .env file, sets sensible defaults and returns the assembled Config. It uses
// the Viper library to handle configuration loading and precedence.
//
// GITHUB_TOKEN and WEBHOOK_SECRET are deliberately optional: a missing token
// only breaks outbound reporting, and a missing secret switches signature
// verification into insecure accept-all mode. Both conditions are logged so
// they cannot pass silently.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("GITHUB_API_URL", "")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg := &Config{
		ServerPort:    v.GetString("SERVER_PORT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),
		GitHubToken:   v.GetString("GITHUB_TOKEN"),
		WebhookSecret: v.GetString("WEBHOOK_SECRET"),
		GitHubAPIURL:  v.GetString("GITHUB_API_URL"),
	}

	if !cfg.HasToken() {
		slog.Warn("GITHUB_TOKEN not set, reporting to GitHub will fail")
	}
	if !cfg.HasWebhookSecret() {
		slog.Warn("WEBHOOK_SECRET not set, webhook signature verification is disabled (insecure mode)")
	}
	return cfg, nil
}
