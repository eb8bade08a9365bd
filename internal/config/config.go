package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Matchmaking engine configuration
	Engine EngineConfig `toml:"engine"`

	// Presence channel configuration
	Presence PresenceConfig `toml:"presence"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr            string   `toml:"addr"`             // Listen address (e.g., ":8080")
	ReadTimeout     string   `toml:"read_timeout"`     // Request read timeout (e.g., "15s")
	WriteTimeout    string   `toml:"write_timeout"`    // Response write timeout
	ShutdownTimeout string   `toml:"shutdown_timeout"` // Graceful shutdown budget
	AllowedOrigins  []string `toml:"allowed_origins"`  // CORS origins
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // Path to the database file
	BusyTimeout string `toml:"busy_timeout"` // SQLite busy timeout (e.g., "5s")
	JournalMode string `toml:"journal_mode"` // Journal mode (WAL, DELETE, ...)
	Synchronous string `toml:"synchronous"`  // Synchronous pragma (NORMAL, FULL, OFF)
	AutoMigrate bool   `toml:"auto_migrate"` // Run migrations on startup
}

// EngineConfig contains matchmaking engine settings.
type EngineConfig struct {
	OptimisticTTL string `toml:"optimistic_ttl"`  // Unconfirmed status write lifetime
	RetainOnError bool   `toml:"retain_on_error"` // Keep last-known-good results on fetch failure
}

// PresenceConfig contains presence channel settings.
type PresenceConfig struct {
	JoinRate  float64 `toml:"join_rate"`  // Sustained joins per second
	JoinBurst int     `toml:"join_burst"` // Join burst allowance
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "10s",
			AllowedOrigins:  []string{"*"},
		},
		Database: DatabaseConfig{
			Path:        "",
			BusyTimeout: "5s",
			JournalMode: "WAL",
			Synchronous: "NORMAL",
			AutoMigrate: true,
		},
		Engine: EngineConfig{
			OptimisticTTL: "30s",
			RetainOnError: false,
		},
		Presence: PresenceConfig{
			JoinRate:  20,
			JoinBurst: 40,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".playsquad")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path. A missing file
// yields the defaults.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"read timeout":     c.Server.ReadTimeout,
		"write timeout":    c.Server.WriteTimeout,
		"shutdown timeout": c.Server.ShutdownTimeout,
		"busy timeout":     c.Database.BusyTimeout,
		"optimistic TTL":   c.Engine.OptimisticTTL,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, value, err)
		}
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server addr cannot be empty")
	}

	switch c.Database.JournalMode {
	case "WAL", "DELETE", "TRUNCATE", "MEMORY":
	default:
		return fmt.Errorf("invalid journal mode: %s", c.Database.JournalMode)
	}

	switch c.Database.Synchronous {
	case "OFF", "NORMAL", "FULL", "EXTRA":
	default:
		return fmt.Errorf("invalid synchronous mode: %s", c.Database.Synchronous)
	}

	if c.Presence.JoinRate <= 0 {
		return fmt.Errorf("presence join rate must be positive: %v", c.Presence.JoinRate)
	}
	if c.Presence.JoinBurst <= 0 {
		return fmt.Errorf("presence join burst must be positive: %d", c.Presence.JoinBurst)
	}

	return nil
}

// GetOptimisticTTL returns the optimistic status TTL as a duration.
func (c *Config) GetOptimisticTTL() (time.Duration, error) {
	return time.ParseDuration(c.Engine.OptimisticTTL)
}

// GetShutdownTimeout returns the graceful shutdown budget as a duration.
func (c *Config) GetShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}

// GetBusyTimeout returns the SQLite busy timeout as a duration.
func (c *Config) GetBusyTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Database.BusyTimeout)
}
