package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfigWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("expected resolved path %s, got %s", path, resolved)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config to be written: %v", err)
	}
}

func TestLoadReadsFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("addr: \":6000\"\nlog_backend: sqlite\ndatabase_path: /tmp/relay.db\nshutdown_timeout: 2s\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("RELAYCHAT_REJECT_DUPLICATE_NAMES", "true")
	t.Setenv("RELAYCHAT_HTTP_ADDR", ":9090")

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":6000" {
		t.Errorf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.LogBackend != LogBackendSQLite || cfg.DatabasePath != "/tmp/relay.db" {
		t.Errorf("unexpected log backend settings: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Errorf("expected 2s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if !cfg.RejectDuplicateNames {
		t.Errorf("expected env to enable reject_duplicate_names")
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected env http_addr, got %q", cfg.HTTPAddr)
	}
	if cfg.LogPath != Default().LogPath {
		t.Errorf("expected default log path, got %q", cfg.LogPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty addr", mutate: func(c *Config) { c.Addr = "" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.LogBackend = "kafka" }, wantErr: true},
		{name: "file without path", mutate: func(c *Config) { c.LogPath = "" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) {
			c.LogBackend = LogBackendSQLite
			c.DatabasePath = ""
		}, wantErr: true},
		{name: "zero line size", mutate: func(c *Config) { c.MaxLineBytes = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateFrom(t *testing.T) {
	cfg := Default()
	cfg.UpdateFrom(Config{Addr: ":7000", RejectDuplicateNames: true})

	if cfg.Addr != ":7000" {
		t.Errorf("expected addr override, got %q", cfg.Addr)
	}
	if !cfg.RejectDuplicateNames {
		t.Errorf("expected reject_duplicate_names to be enabled")
	}
	if cfg.LogPath != Default().LogPath {
		t.Errorf("zero values must not override, got log path %q", cfg.LogPath)
	}
}
