package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Port:            "8081",
		DatabasePath:    "./test.db",
		LogLevel:        "info",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		wantErr     bool
		errorString string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:        "non-numeric port",
			mutate:      func(c *Config) { c.Port = "abc" },
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "port out of range low",
			mutate:      func(c *Config) { c.Port = "0" },
			wantErr:     true,
			errorString: "invalid port 0: must be between 1 and 65535",
		},
		{
			name:        "port out of range high",
			mutate:      func(c *Config) { c.Port = "70000" },
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "missing database path",
			mutate:      func(c *Config) { c.DatabasePath = "" },
			wantErr:     true,
			errorString: "DATABASE_PATH is required",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			wantErr:     true,
			errorString: "invalid log level 'verbose'",
		},
		{
			name:        "read timeout too short",
			mutate:      func(c *Config) { c.ReadTimeout = 500 * time.Millisecond },
			wantErr:     true,
			errorString: "invalid READ_TIMEOUT 500ms: must be at least 1 second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Config.Validate() error = nil, wantErr true")
				}
				if tt.errorString != "" && !strings.Contains(err.Error(), tt.errorString) {
					t.Errorf("Config.Validate() error = %v, want error containing %v", err, tt.errorString)
				}
			} else if err != nil {
				t.Errorf("Config.Validate() error = %v, wantErr false", err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"", slog.LevelInfo, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	vars := []string{"PORT", "DATABASE_PATH", "LOG_LEVEL", "READ_TIMEOUT", "SHUTDOWN_TIMEOUT"}
	original := map[string]string{}
	for _, key := range vars {
		original[key] = os.Getenv(key)
		os.Unsetenv(key)
	}
	defer func() {
		for key, value := range original {
			if value != "" {
				os.Setenv(key, value)
			} else {
				os.Unsetenv(key)
			}
		}
	}()

	t.Run("default values", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8081" {
			t.Errorf("Load() Port = %v, want 8081", cfg.Port)
		}
		if cfg.DatabasePath != "" {
			t.Errorf("Load() DatabasePath = %v, want empty (no default)", cfg.DatabasePath)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("Load() LogLevel = %v, want info", cfg.LogLevel)
		}
		if cfg.ReadTimeout != 10*time.Second {
			t.Errorf("Load() ReadTimeout = %v, want 10s", cfg.ReadTimeout)
		}
	})

	t.Run("environment variables", func(t *testing.T) {
		os.Setenv("PORT", "9090")
		os.Setenv("DATABASE_PATH", "/tmp/fintrack.db")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("READ_TIMEOUT", "5s")

		cfg := Load()

		if cfg.Port != "9090" {
			t.Errorf("Load() Port = %v, want 9090", cfg.Port)
		}
		if cfg.DatabasePath != "/tmp/fintrack.db" {
			t.Errorf("Load() DatabasePath = %v, want /tmp/fintrack.db", cfg.DatabasePath)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Load() LogLevel = %v, want debug", cfg.LogLevel)
		}
		if cfg.ReadTimeout != 5*time.Second {
			t.Errorf("Load() ReadTimeout = %v, want 5s", cfg.ReadTimeout)
		}
	})

	t.Run("invalid duration uses default", func(t *testing.T) {
		os.Setenv("READ_TIMEOUT", "not-a-duration")
		cfg := Load()
		if cfg.ReadTimeout != 10*time.Second {
			t.Errorf("Load() ReadTimeout = %v, want 10s (default for invalid input)", cfg.ReadTimeout)
		}
	})
}
