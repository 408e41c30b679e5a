// Package config provides configuration loading for reviewd.
package config

import (
	"fmt"
	"time"
)

// Config is the top-level reviewd configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	GitHub  GitHubConfig  `koanf:"github"`
	Jira    JiraConfig    `koanf:"jira"`
	Review  ReviewConfig  `koanf:"review"`
	Publish PublishConfig `koanf:"publish"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
	// PublicURL is the externally reachable callback URL, used only for
	// logging the webhook address to configure on the hosting side.
	PublicURL string `koanf:"public_url"`
}

// GitHubConfig holds hosting-API configuration.
type GitHubConfig struct {
	// Token authenticates API reads and the review comment write.
	// Required for every review run.
	Token Secret `koanf:"token"`
	// BaseURL overrides the API endpoint (GitHub Enterprise). Empty
	// means api.github.com.
	BaseURL string `koanf:"base_url"`
	// WebhookSecret verifies inbound event signatures. Empty disables
	// verification; only acceptable for local development.
	WebhookSecret Secret `koanf:"webhook_secret"`
}

// JiraConfig holds ticket-system configuration. All fields empty
// disables ticket lookup; extraction still runs.
type JiraConfig struct {
	BaseURL  string `koanf:"base_url"`
	Email    string `koanf:"email"`
	APIToken Secret `koanf:"api_token"`
}

// ReviewConfig tunes the review pipeline.
type ReviewConfig struct {
	// ProducerTimeout bounds each specialist or rule-engine invocation
	// during fan-out.
	ProducerTimeout Duration `koanf:"producer_timeout"`
	// RuleTimeout bounds a single regex rule match within a scan.
	RuleTimeout Duration `koanf:"rule_timeout"`
	// MaxDiffBytes caps the diff passed to producers.
	MaxDiffBytes int `koanf:"max_diff_bytes"`
	// ReasonerAPIKey authenticates the external reasoning service used
	// by the specialist adapters. Unset disables the specialists; the
	// rule-engine tiers still run.
	ReasonerAPIKey Secret `koanf:"reasoner_api_key"`
	// ReasonerModel selects the model for specialist analysis.
	ReasonerModel string `koanf:"reasoner_model"`
	// ReasonerBaseURL overrides the reasoning service endpoint.
	ReasonerBaseURL string `koanf:"reasoner_base_url"`
}

// PublishConfig controls review-comment publishing retries.
type PublishConfig struct {
	MaxRetries     int      `koanf:"max_retries"`
	InitialBackoff Duration `koanf:"initial_backoff"`
	MaxBackoff     Duration `koanf:"max_backoff"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns a configuration with production defaults. Credentials
// are intentionally empty and must come from the environment.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            9000,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Review: ReviewConfig{
			ProducerTimeout: Duration(120 * time.Second),
			RuleTimeout:     Duration(2 * time.Second),
			MaxDiffBytes:    1 << 20,
			ReasonerModel:   "claude-3-5-sonnet-20241022",
		},
		Publish: PublishConfig{
			MaxRetries:     3,
			InitialBackoff: Duration(time.Second),
			MaxBackoff:     Duration(30 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks invariants that would otherwise surface as confusing
// runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Review.ProducerTimeout.Duration() <= 0 {
		return fmt.Errorf("review.producer_timeout must be positive")
	}
	if c.Review.RuleTimeout.Duration() <= 0 {
		return fmt.Errorf("review.rule_timeout must be positive")
	}
	if c.Publish.MaxRetries < 0 {
		return fmt.Errorf("publish.max_retries cannot be negative")
	}
	if c.Publish.InitialBackoff.Duration() <= 0 {
		return fmt.Errorf("publish.initial_backoff must be positive")
	}
	if c.Jira.BaseURL != "" && (c.Jira.Email == "" || !c.Jira.APIToken.IsSet()) {
		return fmt.Errorf("jira.base_url set without jira.email and jira.api_token")
	}
	return nil
}

// TicketLookupEnabled reports whether Jira is fully configured.
func (c *Config) TicketLookupEnabled() bool {
	return c.Jira.BaseURL != "" && c.Jira.Email != "" && c.Jira.APIToken.IsSet()
}
