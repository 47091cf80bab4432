// Package config handles reading and writing .helix/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the top-level structure for .helix/config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	Backend BackendConfig `yaml:"backend"`
	Chat    ChatConfig    `yaml:"chat"`
	Rooms   []RoomConfig  `yaml:"rooms"`
}

// BackendConfig holds the endpoints of the outreach backend.
type BackendConfig struct {
	APIBaseURL string `yaml:"api_base_url"`
	SocketURL  string `yaml:"socket_url"`
	TimeoutSec int    `yaml:"timeout_sec"` // per HTTP call
}

// ChatConfig holds the identifiers a chat session is scoped to.
type ChatConfig struct {
	UserID         int64  `yaml:"user_id"`
	ConversationID int64  `yaml:"conversation_id"`
	DefaultRoom    string `yaml:"default_room"`
}

// RoomConfig is one entry of the static room list.
type RoomConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Config lives under .helix/ in the working directory.
const configDir = ".helix"
const configFile = "config.yaml"

// ReadConfig reads .helix/config.yaml from the given directory.
// dir is the working directory (not .helix/ itself).
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, configDir, configFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// WriteConfig writes cfg to .helix/config.yaml in the given directory.
// Creates the .helix/ directory if it does not exist.
func WriteConfig(dir string, cfg *Config) error {
	dirPath := filepath.Join(dir, configDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	path := filepath.Join(dirPath, configFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Backend: BackendConfig{
			APIBaseURL: "http://127.0.0.1:5080",
			SocketURL:  "ws://127.0.0.1:3000/ws",
			TimeoutSec: 30,
		},
		Chat: ChatConfig{
			UserID:         1,
			ConversationID: 68,
			DefaultRoom:    "1",
		},
		Rooms: []RoomConfig{
			{ID: "1", Name: "Helix"},
			{ID: "2", Name: "Selix"},
			{ID: "3", Name: "General"},
		},
	}
}
