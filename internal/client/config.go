package client

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultBaseURL = "http://localhost:8080"

// Config is ~/.ise/leadsctl.toml: the server to talk to and the tokens of
// the last login.
type Config struct {
	BaseURL          string    `toml:"base_url"`
	Email            string    `toml:"email,omitempty"`
	AccessToken      string    `toml:"access_token,omitempty"`
	RefreshToken     string    `toml:"refresh_token,omitempty"`
	AccessExpiresAt  time.Time `toml:"access_expires_at,omitzero"`
	RefreshExpiresAt time.Time `toml:"refresh_expires_at,omitzero"`
}

// ConfigPath returns ~/.ise/leadsctl.toml.
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ise", "leadsctl.toml")
}

// LoadConfig reads path. A missing file yields the default config.
func LoadConfig(path string) (*Config, error) {
	cfg := Config{BaseURL: DefaultBaseURL}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path with owner-only permissions; it holds tokens.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
