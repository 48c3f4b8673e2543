// Package config handles application configuration from environment variables.
//
// Configuration is built in two phases: Default returns a usable value for
// local development, and ApplyEnv overlays whatever the environment provides.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/api-debugger/internal/domain"
)

// DefaultBackendURL is the local development address of the diagnostic backend.
const DefaultBackendURL = "http://localhost:8001"

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Diagnostic backend configuration
	Backend BackendConfig

	// Identity and workspace configuration
	Session SessionConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// It must exceed Backend.Timeout or slow diagnoses get cut off mid-response.
	WriteTimeout time.Duration

	// Development enables debug gin mode and the development logger.
	Development bool
}

// BackendConfig contains diagnostic backend settings.
type BackendConfig struct {
	// BaseURL is where /debug, /test-request and /health live.
	BaseURL string

	// Timeout is the transport-level limit for a single call.
	Timeout time.Duration

	// MockMode answers diagnoses locally without calling the backend.
	MockMode bool
}

// SessionConfig contains identity token and workspace settings.
type SessionConfig struct {
	// Secret verifies HS256 session tokens issued by the identity provider.
	Secret string

	// Disabled signs every visitor in as a fixed local user.
	Disabled bool

	// SignInURL is the identity provider's sign-in page, linked from the landing page.
	SignInURL string

	// WorkspaceTTL is how long an idle workspace keeps its form and result.
	WorkspaceTTL time.Duration

	// SecureCookies marks the workspace cookie Secure.
	SecureCookies bool
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level overrides the logger level (debug, info, warn, error).
	Level string

	// MaxBodySize is how much of a request payload the sanitizer keeps in logs.
	MaxBodySize int
}

// Default returns the configuration used when the environment says nothing.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 150 * time.Second,
			Development:  true,
		},
		Backend: BackendConfig{
			BaseURL: DefaultBackendURL,
			Timeout: 120 * time.Second,
		},
		Session: SessionConfig{
			WorkspaceTTL: 30 * time.Minute,
		},
		Log: LogConfig{
			Level:       "",
			MaxBodySize: 4096,
		},
	}
}

// ApplyEnv overlays environment variables onto c.
func (c *Config) ApplyEnv() {
	c.Server.Port = getEnvOrDefault("PORT", c.Server.Port)
	c.Server.ReadTimeout = getDurationOrDefault("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationOrDefault("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		c.Server.Development = mode != "release"
	}

	c.Backend.BaseURL = strings.TrimRight(getEnvOrDefault("API_URL", c.Backend.BaseURL), "/")
	c.Backend.Timeout = getDurationOrDefault("BACKEND_TIMEOUT", c.Backend.Timeout)
	c.Backend.MockMode = getBoolOrDefault("BACKEND_MOCK_MODE", c.Backend.MockMode)

	c.Session.Secret = getEnvOrDefault("SESSION_SECRET", c.Session.Secret)
	c.Session.Disabled = getBoolOrDefault("AUTH_DISABLED", c.Session.Disabled)
	c.Session.SignInURL = getEnvOrDefault("SIGN_IN_URL", c.Session.SignInURL)
	c.Session.WorkspaceTTL = getDurationOrDefault("WORKSPACE_TTL", c.Session.WorkspaceTTL)
	c.Session.SecureCookies = getBoolOrDefault("SECURE_COOKIES", c.Session.SecureCookies)

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	c.Log.MaxBodySize = getIntOrDefault("MAX_LOG_BODY", c.Log.MaxBodySize)
}

// Load builds the defaults, applies the environment and validates the result.
func Load() (*Config, error) {
	cfg := Default()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.ValidateClient(); err != nil {
		return err
	}

	if c.Server.Port == "" {
		return fmt.Errorf("%w: PORT is required", domain.ErrInvalidConfig)
	}

	if !c.Session.Disabled && c.Session.Secret == "" {
		return fmt.Errorf("%w: SESSION_SECRET is required unless AUTH_DISABLED=true", domain.ErrInvalidConfig)
	}

	if c.Session.WorkspaceTTL < time.Minute {
		return fmt.Errorf("%w: WORKSPACE_TTL must be at least 1 minute", domain.ErrInvalidConfig)
	}

	return nil
}

// ValidateClient checks only what a backend client needs. The CLI uses it.
func (c *Config) ValidateClient() error {
	if !c.Backend.MockMode {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: API_URL must be an absolute URL, got %q", domain.ErrInvalidConfig, c.Backend.BaseURL)
		}
	}

	if c.Backend.Timeout < time.Second {
		return fmt.Errorf("%w: BACKEND_TIMEOUT must be at least 1 second", domain.ErrInvalidConfig)
	}

	if c.Log.MaxBodySize < 256 {
		return fmt.Errorf("%w: MAX_LOG_BODY must be at least 256 bytes", domain.ErrInvalidConfig)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first (e.g., "15")
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		// Try parsing as duration string (e.g., "15s", "1m")
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
