package config

import (
	"errors"
	"testing"
	"time"

	"github.com/api-debugger/internal/domain"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Backend.BaseURL != DefaultBackendURL {
		t.Errorf("BaseURL = %q, want %q", cfg.Backend.BaseURL, DefaultBackendURL)
	}
	if cfg.Server.WriteTimeout <= cfg.Backend.Timeout {
		t.Errorf("WriteTimeout %v should exceed backend timeout %v", cfg.Server.WriteTimeout, cfg.Backend.Timeout)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("API_URL", "https://debugger.example.com/")
	t.Setenv("BACKEND_TIMEOUT", "45")
	t.Setenv("BACKEND_MOCK_MODE", "true")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("WORKSPACE_TTL", "10m")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.BaseURL != "https://debugger.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v", cfg.Backend.Timeout)
	}
	if !cfg.Backend.MockMode {
		t.Errorf("MockMode = false")
	}
	if cfg.Session.WorkspaceTTL != 10*time.Minute {
		t.Errorf("WorkspaceTTL = %v", cfg.Session.WorkspaceTTL)
	}
	if cfg.Server.Development {
		t.Errorf("Development = true in release mode")
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "auth disabled defaults",
			mutate:  func(c *Config) { c.Session.Disabled = true },
			wantErr: false,
		},
		{
			name:    "missing session secret",
			mutate:  func(c *Config) {},
			wantErr: true,
		},
		{
			name: "relative backend url",
			mutate: func(c *Config) {
				c.Session.Disabled = true
				c.Backend.BaseURL = "localhost:8001"
			},
			wantErr: true,
		},
		{
			name: "relative backend url in mock mode",
			mutate: func(c *Config) {
				c.Session.Disabled = true
				c.Backend.BaseURL = ""
				c.Backend.MockMode = true
			},
			wantErr: false,
		},
		{
			name: "backend timeout too small",
			mutate: func(c *Config) {
				c.Session.Disabled = true
				c.Backend.Timeout = 100 * time.Millisecond
			},
			wantErr: true,
		},
		{
			name: "workspace ttl too small",
			mutate: func(c *Config) {
				c.Session.Disabled = true
				c.Session.WorkspaceTTL = time.Second
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("error %v should wrap ErrInvalidConfig", err)
			}
		})
	}
}
