package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all mfocus configuration.
type Config struct {
	ActivityWatch ActivityWatchConfig `toml:"activitywatch"`
	Ollama        OllamaConfig        `toml:"ollama"`
	Classifier    ClassifierConfig    `toml:"classifier"`
	Store         StoreConfig         `toml:"store"`
	Daemon        DaemonConfig        `toml:"daemon"`
	Display       DisplayConfig       `toml:"display"`
}

// ActivityWatchConfig selects the window-event source.
type ActivityWatchConfig struct {
	BaseURL      string   `toml:"base_url"`
	Bucket       string   `toml:"bucket,omitempty"`
	Limit        int      `toml:"limit"`
	ExcludedApps []string `toml:"excluded_apps"`
}

// OllamaConfig holds the classification oracle settings.
type OllamaConfig struct {
	Enabled    bool   `toml:"enabled"`
	BaseURL    string `toml:"base_url"`
	Model      string `toml:"model"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// ClassifierConfig extends the built-in keyword rules.
type ClassifierConfig struct {
	ExtraMeetingKeywords []string `toml:"extra_meeting_keywords,omitempty"`
	ExtraBrowsers        []string `toml:"extra_browsers,omitempty"`
	ExtraDevTools        []string `toml:"extra_dev_tools,omitempty"`
}

// StoreConfig controls persistence of categorized events.
type StoreConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path,omitempty"`
	UserID  string `toml:"user_id,omitempty"`
}

// DaemonConfig holds HTTP API settings.
type DaemonConfig struct {
	Addr        string `toml:"addr"`
	HistorySize int    `toml:"history_size"`
}

// DisplayConfig holds presentation settings.
type DisplayConfig struct {
	UTCOffset string `toml:"utc_offset"`
	Theme     string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		ActivityWatch: ActivityWatchConfig{
			BaseURL:      "http://localhost:5600",
			Limit:        10000,
			ExcludedApps: []string{"loginwindow", "lockscreen", "screensaver"},
		},
		Ollama: OllamaConfig{
			Enabled:    true,
			BaseURL:    "http://localhost:11434",
			Model:      "llama3",
			TimeoutSec: 20,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8000",
			HistorySize: 50,
		},
		Display: DisplayConfig{
			UTCOffset: "+08:00",
			Theme:     "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mfocus")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mfocus")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// GetActivityWatchURL returns the ActivityWatch URL from env var or config, in that order.
func GetActivityWatchURL(cfg Config) string {
	if v := os.Getenv("MFOCUS_AW_URL"); v != "" {
		return v
	}
	return cfg.ActivityWatch.BaseURL
}

// GetOllamaURL returns the Ollama URL from env var or config, in that order.
func GetOllamaURL(cfg Config) string {
	if v := os.Getenv("MFOCUS_OLLAMA_URL"); v != "" {
		return v
	}
	return cfg.Ollama.BaseURL
}

// GetOllamaModel returns the Ollama model from env var or config, in that order.
func GetOllamaModel(cfg Config) string {
	if v := os.Getenv("MFOCUS_OLLAMA_MODEL"); v != "" {
		return v
	}
	return cfg.Ollama.Model
}

// Validate reports settings that would make every run fail.
func (c Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{
		"activitywatch.base_url": c.ActivityWatch.BaseURL,
		"ollama.base_url":        c.Ollama.BaseURL,
	} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: invalid URL %q", name, raw))
		}
	}
	if c.ActivityWatch.Limit < 0 {
		errs = append(errs, fmt.Errorf("activitywatch.limit: must not be negative"))
	}
	if c.Ollama.TimeoutSec < 0 {
		errs = append(errs, fmt.Errorf("ollama.timeout_sec: must not be negative"))
	}
	if c.Daemon.HistorySize < 0 {
		errs = append(errs, fmt.Errorf("daemon.history_size: must not be negative"))
	}
	if strings.TrimSpace(c.Daemon.Addr) == "" {
		errs = append(errs, fmt.Errorf("daemon.addr: must not be empty"))
	}
	return errors.Join(errs...)
}
