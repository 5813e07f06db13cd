package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "mailboard"

const (
	ProviderGmail   = "gmail"
	ProviderFixture = "fixture"
)

// Config holds all mailboard configuration.
type Config struct {
	Gmail    GmailConfig    `toml:"gmail"`
	Accounts AccountsConfig `toml:"accounts"`
	Provider ProviderConfig `toml:"provider"`
	List     ListConfig     `toml:"list"`
	Snooze   SnoozeConfig   `toml:"snooze"`
	AI       AIConfig       `toml:"ai"`
	Log      LogConfig      `toml:"log"`
}

// GmailConfig holds Gmail OAuth credentials and API tuning.
type GmailConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	// FetchLimit bounds concurrent message fetches per listed page.
	FetchLimit int `toml:"fetch_limit"`
}

// AccountsConfig holds account selection settings.
type AccountsConfig struct {
	Default string `toml:"default"`
}

// ProviderConfig selects where mail comes from. The fixture provider reads
// Gmail-format JSON messages from FixtureDir; triage state still lives in
// the local database.
type ProviderConfig struct {
	Kind       string `toml:"kind"`
	FixtureDir string `toml:"fixture_dir"`
}

// ListConfig holds listing defaults.
type ListConfig struct {
	PageSize int    `toml:"page_size"`
	Mailbox  string `toml:"mailbox"`
}

// SnoozeConfig holds snooze defaults.
type SnoozeConfig struct {
	Default string `toml:"default"`
}

// AIConfig configures the summarizer.
type AIConfig struct {
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
	APIKey    string `toml:"api_key"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

func defaults() Config {
	return Config{
		Gmail:    GmailConfig{FetchLimit: 10},
		Provider: ProviderConfig{Kind: ProviderGmail},
		List: ListConfig{
			PageSize: 25,
			Mailbox:  "INBOX",
		},
		Snooze: SnoozeConfig{Default: "24h"},
		AI:     AIConfig{MaxTokens: 300},
		Log:    LogConfig{Level: "warn"},
	}
}

// Load reads config from path and applies environment overrides. A missing
// file or empty path yields defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("GMAIL_CLIENT_ID"); v != "" {
		c.Gmail.ClientID = v
	}
	if v := os.Getenv("GMAIL_CLIENT_SECRET"); v != "" {
		c.Gmail.ClientSecret = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && c.AI.APIKey == "" {
		c.AI.APIKey = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Provider.Kind {
	case ProviderGmail:
	case ProviderFixture:
		if c.Provider.FixtureDir == "" {
			return fmt.Errorf("invalid config: provider.fixture_dir is required for the fixture provider")
		}
	default:
		return fmt.Errorf("invalid config: unknown provider.kind %q", c.Provider.Kind)
	}
	if c.Gmail.FetchLimit <= 0 || c.Gmail.FetchLimit > 50 {
		return fmt.Errorf("invalid config: gmail.fetch_limit must be between 1 and 50, got %d", c.Gmail.FetchLimit)
	}
	if c.List.PageSize <= 0 || c.List.PageSize > 500 {
		return fmt.Errorf("invalid config: list.page_size must be between 1 and 500, got %d", c.List.PageSize)
	}
	if _, err := c.SnoozeDefault(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// SnoozeDefault parses snooze.default.
func (c *Config) SnoozeDefault() (time.Duration, error) {
	d, err := time.ParseDuration(c.Snooze.Default)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid config: snooze.default %q is not a positive duration", c.Snooze.Default)
	}
	return d, nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return 0, fmt.Errorf("invalid config: log.level %q", c.Log.Level)
	}
	return lvl, nil
}

// ConfigDir returns the mailboard config directory path.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// DataDir returns the mailboard data directory path.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}
