// ABOUTME: Application configuration stored as JSON under the XDG config dir
// ABOUTME: Layers .env and PCRM_* environment overrides on top of the saved file
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/harperreed/pcrm/models"
	"github.com/joho/godotenv"
)

const (
	// AppName names the XDG subdirectories used for config and data.
	AppName = "pcrm"

	// ConfigFileName is where we store local config.
	ConfigFileName = "config.json"

	// DefaultAddr is the listen address of the web server.
	DefaultAddr = "127.0.0.1:8080"

	DefaultLogLevel = "info"
)

// Config holds local settings for every pcrm command.
type Config struct {
	DBPath    string `json:"db_path,omitempty"`
	Addr      string `json:"addr,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	LogLevel  string `json:"log_level,omitempty"`

	// Google OAuth client credentials are only read from the environment.
	GoogleClientID     string `json:"-"`
	GoogleClientSecret string `json:"-"`

	path string
}

// DefaultConfig returns a new config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DBPath:   filepath.Join(xdg.DataHome, AppName, AppName+".db"),
		Addr:     DefaultAddr,
		LogLevel: DefaultLogLevel,
	}
}

// DefaultPath returns the config file location under the XDG config dir.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, ConfigFileName)
}

// Load reads .env, the config file at DefaultPath and the environment.
func Load() (*Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := LoadFile(DefaultPath())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// LoadFile loads config from path, or returns defaults if it is missing or unreadable JSON.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var saved Config
	if err := json.Unmarshal(data, &saved); err != nil {
		// Invalid config, use defaults
		return cfg, nil //nolint:nilerr // Intentionally returning defaults on parse error
	}

	if saved.DBPath != "" {
		cfg.DBPath = saved.DBPath
	}
	if saved.Addr != "" {
		cfg.Addr = saved.Addr
	}
	if saved.LogLevel != "" {
		cfg.LogLevel = saved.LogLevel
	}
	cfg.UserID = saved.UserID
	cfg.UserEmail = saved.UserEmail
	return cfg, nil
}

// ApplyEnv overrides fields from PCRM_* and GOOGLE_* variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.DBPath, "PCRM_DB_PATH")
	set(&c.Addr, "PCRM_ADDR")
	set(&c.UserID, "PCRM_USER_ID")
	set(&c.UserEmail, "PCRM_USER_EMAIL")
	set(&c.LogLevel, "PCRM_LOG_LEVEL")
	set(&c.GoogleClientID, "GOOGLE_CLIENT_ID")
	set(&c.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
}

// Save persists the config to the file it was loaded from.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureUserID generates and saves a user id on first run.
func (c *Config) EnsureUserID() error {
	if c.UserID != "" {
		if _, err := uuid.Parse(c.UserID); err != nil {
			return fmt.Errorf("invalid user id %q: %w", c.UserID, err)
		}
		return nil
	}
	c.UserID = uuid.New().String()
	return c.Save()
}

// Identity returns the configured user, or an absent identity when no valid id is set.
func (c *Config) Identity() models.Identity {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return models.Identity{}
	}
	return models.Identity{UserID: id, Email: c.UserEmail}
}

// TokenPath is where the Google OAuth token is cached.
func (c *Config) TokenPath() string {
	return filepath.Join(filepath.Dir(c.DBPath), "google-token.json")
}
