package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	envTMDBAPIKey     = "REELX_TMDB_API_KEY"
	envTMDBReadToken  = "REELX_TMDB_READ_TOKEN"
	envFirebaseAPIKey = "REELX_FIREBASE_API_KEY"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Identity IdentityConfig `toml:"identity"`
	Catalog  CatalogConfig  `toml:"catalog"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port the web UI listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// IdentityConfig selects and configures the identity provider.
//
// Provider is either "local" (accounts kept in the sqlite database) or "firebase" (Identity Toolkit REST API).
type IdentityConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

// CatalogConfig contains TMDB API settings.
type CatalogConfig struct {
	BaseURL         string `toml:"base_url"`
	APIKey          string `toml:"api_key"`
	ReadAccessToken string `toml:"read_access_token"`
	Language        string `toml:"language"`
	ImageBaseURL    string `toml:"image_base_url"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Credentials found in the environment take precedence over the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.applyEnv()
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envTMDBAPIKey); v != "" {
		c.Catalog.APIKey = v
	}
	if v := os.Getenv(envTMDBReadToken); v != "" {
		c.Catalog.ReadAccessToken = v
	}
	if v := os.Getenv(envFirebaseAPIKey); v != "" {
		c.Identity.APIKey = v
	}
}
