package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig
	Socket SocketConfig
	Auth   AuthConfig
}

type ServerConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SocketConfig struct {
	URL            string
	ReconnectDelay time.Duration
}

type AuthConfig struct {
	Token string
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			BaseURL: getEnvOrDefault("SERVER_URL", "http://localhost:8080"),
			Timeout: getDurationOrDefault("SERVER_TIMEOUT", "10s"),
		},
		Socket: SocketConfig{
			URL:            getEnvOrDefault("SOCKET_URL", "ws://localhost:8080/ws"),
			ReconnectDelay: getDurationOrDefault("RECONNECT_DELAY", "3s"),
		},
		Auth: AuthConfig{
			Token: os.Getenv("SESSION_TOKEN"),
		},
	}
}

// SessionFile is the optional YAML profile holding endpoints and the session
// token, so the client can run without environment setup.
type SessionFile struct {
	ServerURL string `yaml:"server_url"`
	SocketURL string `yaml:"socket_url"`
	Token     string `yaml:"token"`
}

// ApplySessionFile overlays values from a YAML session file onto the config.
// A missing file is not an error; environment values win over file values.
func (c *Config) ApplySessionFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading session file: %w", err)
	}

	var sf SessionFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if os.Getenv("SERVER_URL") == "" && sf.ServerURL != "" {
		c.Server.BaseURL = sf.ServerURL
	}
	if os.Getenv("SOCKET_URL") == "" && sf.SocketURL != "" {
		c.Socket.URL = sf.SocketURL
	}
	if c.Auth.Token == "" && sf.Token != "" {
		c.Auth.Token = sf.Token
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationOrDefault(key, defaultValue string) time.Duration {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return duration
}
