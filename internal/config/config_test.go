package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Backend.APIBaseURL = "http://backend.internal:8080"
	cfg.Chat.DefaultRoom = "2"

	// Write to disk
	if err := WriteConfig(tmpDir, cfg); err != nil {
		t.Fatalf("WriteConfig failed: %v", err)
	}

	// Read back
	loaded, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed: %v", err)
	}

	if loaded.Backend.APIBaseURL != "http://backend.internal:8080" {
		t.Errorf("APIBaseURL: got %q", loaded.Backend.APIBaseURL)
	}
	if loaded.Chat.DefaultRoom != "2" {
		t.Errorf("DefaultRoom: got %q, want %q", loaded.Chat.DefaultRoom, "2")
	}
	if len(loaded.Rooms) != 3 {
		t.Errorf("Rooms: got %d entries, want 3", len(loaded.Rooms))
	}
}

func TestDefaultConfigRoomList(t *testing.T) {
	cfg := DefaultConfig()
	if len(cfg.Rooms) != 3 {
		t.Fatalf("default room list has %d entries, want 3", len(cfg.Rooms))
	}
	if cfg.Rooms[0].Name != "Helix" {
		t.Errorf("Rooms[0].Name = %q, want Helix", cfg.Rooms[0].Name)
	}
	if cfg.Chat.DefaultRoom != cfg.Rooms[0].ID {
		t.Errorf("default room %q is not the first room %q", cfg.Chat.DefaultRoom, cfg.Rooms[0].ID)
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestBackwardCompatibility(t *testing.T) {
	// Simulate an old config file without the rooms section.
	tmpDir := t.TempDir()
	oldConfig := `version: 1
backend:
  api_base_url: http://127.0.0.1:5080
  socket_url: ws://127.0.0.1:3000/ws
chat:
  user_id: 1
  conversation_id: 68
  default_room: "1"
`
	configPath := filepath.Join(tmpDir, ".helix")
	if err := os.MkdirAll(configPath, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configPath, "config.yaml"), []byte(oldConfig), 0644); err != nil {
		t.Fatalf("failed to write old config: %v", err)
	}

	cfg, err := ReadConfig(tmpDir)
	if err != nil {
		t.Fatalf("ReadConfig failed on old config: %v", err)
	}
	if cfg.Backend.APIBaseURL != "http://127.0.0.1:5080" {
		t.Errorf("APIBaseURL = %q", cfg.Backend.APIBaseURL)
	}
	if len(cfg.Rooms) != 0 {
		t.Errorf("expected no rooms for old config, got %d", len(cfg.Rooms))
	}
}
