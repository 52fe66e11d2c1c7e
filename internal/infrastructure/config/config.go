package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Shell      ShellConfig
	PathConfig PathConfig
	HTTP       HTTPConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// ShellConfig holds visit coordination settings.
type ShellConfig struct {
	StartLocation        string        `envconfig:"SHELL_START_URL" default:"http://localhost:3000/"`
	Debug                bool          `envconfig:"SHELL_DEBUG" default:"false"`
	ProposalThrottle     time.Duration `envconfig:"SHELL_PROPOSAL_THROTTLE" default:"500ms"`
	RedirectProbeTimeout time.Duration `envconfig:"SHELL_PROBE_TIMEOUT" default:"15s"`
	AllowedOrigins       []string      `envconfig:"SHELL_ALLOWED_ORIGINS"`
}

// PathConfig locates the path configuration.
type PathConfig struct {
	AssetFile string `envconfig:"PATH_CONFIG_FILE"`
	RemoteURL string `envconfig:"PATH_CONFIG_URL"`
	CacheDir  string `envconfig:"PATH_CONFIG_CACHE_DIR" default:"/tmp/webshell/path-configuration"`
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	Timeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	RetryCount   int           `envconfig:"HTTP_RETRIES" default:"2"`
	UserAgent    string        `envconfig:"HTTP_USER_AGENT" default:"WebShell/1.0"`
	RateLimit    float64       `envconfig:"HTTP_RATE_LIMIT" default:"0"`
	MaxRedirects int           `envconfig:"HTTP_MAX_REDIRECTS" default:"10"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Shell: ShellConfig{
			StartLocation:        "http://localhost:3000/",
			ProposalThrottle:     500 * time.Millisecond,
			RedirectProbeTimeout: 15 * time.Second,
		},
		PathConfig: PathConfig{
			CacheDir: "/tmp/webshell/path-configuration",
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			RetryCount:   2,
			UserAgent:    "WebShell/1.0",
			MaxRedirects: 10,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Shell.StartLocation)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid start location %q: must be an absolute http(s) URL", c.Shell.StartLocation)
	}
	if c.PathConfig.RemoteURL != "" {
		if u, err := url.Parse(c.PathConfig.RemoteURL); err != nil || u.Host == "" {
			return fmt.Errorf("invalid path configuration URL %q", c.PathConfig.RemoteURL)
		}
	}
	if c.Shell.ProposalThrottle < 0 {
		return fmt.Errorf("proposal throttle must not be negative")
	}
	return nil
}
