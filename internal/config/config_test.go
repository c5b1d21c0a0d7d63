package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_URL", "")
	t.Setenv("SOCKET_URL", "")
	t.Setenv("SESSION_TOKEN", "")
	t.Setenv("RECONNECT_DELAY", "")

	cfg := Load()

	if cfg.Server.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Socket.ReconnectDelay != 3*time.Second {
		t.Errorf("ReconnectDelay = %s, want 3s", cfg.Socket.ReconnectDelay)
	}
	if cfg.Auth.Token != "" {
		t.Errorf("Token = %q, want empty", cfg.Auth.Token)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SOCKET_URL", "ws://example.com/ws")
	t.Setenv("RECONNECT_DELAY", "500ms")

	cfg := Load()

	if cfg.Socket.URL != "ws://example.com/ws" {
		t.Errorf("Socket URL = %q", cfg.Socket.URL)
	}
	if cfg.Socket.ReconnectDelay != 500*time.Millisecond {
		t.Errorf("ReconnectDelay = %s", cfg.Socket.ReconnectDelay)
	}
}

func TestApplySessionFile(t *testing.T) {
	t.Setenv("SERVER_URL", "")
	t.Setenv("SOCKET_URL", "")
	t.Setenv("SESSION_TOKEN", "")

	path := filepath.Join(t.TempDir(), "session.yaml")
	contents := "server_url: https://api.example.com\nsocket_url: wss://api.example.com/ws\ntoken: tok-123\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("Writing session file: %v", err)
	}

	cfg := Load()
	if err := cfg.ApplySessionFile(path); err != nil {
		t.Fatalf("ApplySessionFile: %v", err)
	}

	if cfg.Server.BaseURL != "https://api.example.com" {
		t.Errorf("BaseURL = %q", cfg.Server.BaseURL)
	}
	if cfg.Socket.URL != "wss://api.example.com/ws" {
		t.Errorf("Socket URL = %q", cfg.Socket.URL)
	}
	if cfg.Auth.Token != "tok-123" {
		t.Errorf("Token = %q", cfg.Auth.Token)
	}
}

func TestApplySessionFileEnvWins(t *testing.T) {
	t.Setenv("SOCKET_URL", "ws://from-env/ws")

	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := os.WriteFile(path, []byte("socket_url: wss://from-file/ws\n"), 0o600); err != nil {
		t.Fatalf("Writing session file: %v", err)
	}

	cfg := Load()
	if err := cfg.ApplySessionFile(path); err != nil {
		t.Fatalf("ApplySessionFile: %v", err)
	}
	if cfg.Socket.URL != "ws://from-env/ws" {
		t.Errorf("Socket URL = %q, environment should win", cfg.Socket.URL)
	}
}

func TestApplySessionFileMissingIsFine(t *testing.T) {
	cfg := Load()
	if err := cfg.ApplySessionFile(filepath.Join(t.TempDir(), "nope.yaml")); err != nil {
		t.Errorf("Missing session file should not error: %v", err)
	}
}

func TestApplySessionFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("socket_url: [unclosed\n"), 0o600); err != nil {
		t.Fatalf("Writing session file: %v", err)
	}

	cfg := Load()
	if err := cfg.ApplySessionFile(path); err == nil {
		t.Error("Expected parse error for malformed YAML")
	}
}
