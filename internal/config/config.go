package config

import "time"

// Log backends accepted by LogBackend.
const (
	LogBackendFile   = "file"
	LogBackendSQLite = "sqlite"
)

// Config holds server configuration values.
type Config struct {
	Addr                 string        `mapstructure:"addr" yaml:"addr"`
	HTTPAddr             string        `mapstructure:"http_addr" yaml:"http_addr"`
	LogLevel             string        `mapstructure:"log_level" yaml:"log_level"`
	LogBackend           string        `mapstructure:"log_backend" yaml:"log_backend"`
	LogPath              string        `mapstructure:"log_path" yaml:"log_path"`
	DatabasePath         string        `mapstructure:"database_path" yaml:"database_path"`
	RejectDuplicateNames bool          `mapstructure:"reject_duplicate_names" yaml:"reject_duplicate_names"`
	MaxLineBytes         int           `mapstructure:"max_line_bytes" yaml:"max_line_bytes"`
	ReadHeaderTimeout    time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout      time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":5000",
		HTTPAddr:          ":8080",
		LogLevel:          "info",
		LogBackend:        LogBackendFile,
		LogPath:           "ChatHistory.txt",
		DatabasePath:      "chat.db",
		MaxLineBytes:      64 * 1024,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
// RejectDuplicateNames only ever switches on here; callers turn it off explicitly.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogBackend != "" {
		c.LogBackend = other.LogBackend
	}
	if other.LogPath != "" {
		c.LogPath = other.LogPath
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.RejectDuplicateNames {
		c.RejectDuplicateNames = true
	}
	if other.MaxLineBytes != 0 {
		c.MaxLineBytes = other.MaxLineBytes
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}
