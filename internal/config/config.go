// Package config handles loading and validating the application configuration
// from a YAML file with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/ksuda/pricewatch/pkg/types"
)

// Config is the top-level application configuration.
type Config struct {
	Products      []domain.ProductConfig `yaml:"products"`
	Browser       BrowserConfig          `yaml:"browser"`
	State         StateConfig            `yaml:"state"`
	Schedule      ScheduleConfig         `yaml:"schedule"`
	Notifications NotificationsConfig    `yaml:"notifications"`
	Logging       LoggingConfig          `yaml:"logging"`
}

// BrowserConfig defines headless browser settings. Headful runs a visible
// browser window, which is only useful when debugging selectors locally.
type BrowserConfig struct {
	BinPath          string        `yaml:"bin_path"`
	Headful          bool          `yaml:"headful"`
	PageTimeout      time.Duration `yaml:"page_timeout"`
	MinFetchInterval time.Duration `yaml:"min_fetch_interval"`
}

// StateConfig defines where the persisted state document lives.
type StateConfig struct {
	File string `yaml:"file"`
}

// ScheduleConfig defines the watch-mode check interval.
type ScheduleConfig struct {
	CheckInterval time.Duration `yaml:"check_interval"`
}

// NotificationsConfig defines notification transports. Zero enabled
// transports is valid: events are computed and logged but not sent.
type NotificationsConfig struct {
	Slack   WebhookConfig `yaml:"slack"`
	Discord WebhookConfig `yaml:"discord"`
}

// WebhookConfig defines a single incoming-webhook transport.
type WebhookConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution, environment overrides, and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides honors the environment variables the tool has always
// supported, so webhook URLs and the browser binary never need to live in
// the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Slack.Enabled = true
		cfg.Notifications.Slack.WebhookURL = v
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Notifications.Discord.Enabled = true
		cfg.Notifications.Discord.WebhookURL = v
	}
	if v := os.Getenv("CHROME_BINARY"); v != "" {
		cfg.Browser.BinPath = v
	}
}

func applyDefaults(cfg *Config) {
	applyBrowserDefaults(&cfg.Browser)
	applyStateDefaults(&cfg.State)
	applyScheduleDefaults(&cfg.Schedule)
	applyLoggingDefaults(&cfg.Logging)
}

func applyBrowserDefaults(b *BrowserConfig) {
	if b.PageTimeout == 0 {
		b.PageTimeout = 20 * time.Second
	}
	if b.MinFetchInterval == 0 {
		b.MinFetchInterval = 2 * time.Second
	}
}

func applyStateDefaults(s *StateConfig) {
	if s.File == "" {
		s.File = "state.json"
	}
}

func applyScheduleDefaults(s *ScheduleConfig) {
	if s.CheckInterval == 0 {
		s.CheckInterval = time.Hour
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if len(cfg.Products) == 0 {
		errs = append(errs, fmt.Errorf("at least one product must be configured"))
	}

	seen := make(map[string]bool, len(cfg.Products))
	for i := range cfg.Products {
		p := &cfg.Products[i]
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("products[%d].name is required", i))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("product name %q is duplicated", p.Name))
		}
		seen[p.Name] = true

		if p.URL == "" {
			errs = append(errs, fmt.Errorf("product %q: url is required", p.Name))
		}
		if p.Selector == "" {
			errs = append(errs, fmt.Errorf("product %q: selector is required", p.Name))
		}
		if p.TargetPrice != nil && *p.TargetPrice <= 0 {
			errs = append(errs, fmt.Errorf("product %q: target_price must be positive", p.Name))
		}
	}

	if cfg.Notifications.Slack.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.slack.webhook_url is required when slack is enabled"))
	}
	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(errs, fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"))
	}

	return errors.Join(errs...)
}
