// Package config provides configuration loading for the hookline dashboard
// backend and the hline CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hookline/hookline/common/httputil"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// HOOKLINE_API_URL or HOOKLINE_SESSION_BACKEND.
const EnvPrefix = "HOOKLINE"

// Config is the dashboard backend configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	API       APIConfig       `mapstructure:"api"`
	Session   SessionConfig   `mapstructure:"session"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	StaticDir string          `mapstructure:"static_dir"`
	DevMode   bool            `mapstructure:"dev_mode"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	// TrustedProxies (IPs or CIDRs) may set X-Forwarded-For.
	TrustedProxies []string `mapstructure:"trusted_proxies"`
}

// Addr is the listen address for Port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// APIConfig points at the webhooks backend.
type APIConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig selects where dashboard sessions live.
type SessionConfig struct {
	Backend  string        `mapstructure:"backend"` // memory or redis
	RedisURL string        `mapstructure:"redis_url"`
	Secret   string        `mapstructure:"secret"`
	TTL      time.Duration `mapstructure:"ttl"`
	Secure   bool          `mapstructure:"secure_cookie"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig bounds mutating requests per session.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const defaultSecret = "change-this-in-production"

// Load reads configuration from path (if non-empty) and HOOKLINE_* environment
// variables. A missing file is not an error; defaults and env still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the backend cannot start with.
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return errors.New("api.url is required")
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return errors.New("session.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret is required")
	}
	if _, err := httputil.ParseTrustedProxies(c.Server.TrustedProxies); err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return errors.New("rate_limit.rps and rate_limit.burst must be positive")
	}
	return nil
}

// InsecureSecret reports whether the built-in session secret is still in use.
func (c *Config) InsecureSecret() bool {
	return c.Session.Secret == defaultSecret
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.trusted_proxies", []string{})

	v.SetDefault("api.url", "http://localhost:5005/api/v1")
	v.SetDefault("api.timeout", "30s")

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.redis_url", "redis://localhost:6379/0")
	v.SetDefault("session.secret", defaultSecret)
	v.SetDefault("session.ttl", "12h")
	v.SetDefault("session.secure_cookie", false)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:4200"})

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 5)
	v.SetDefault("rate_limit.burst", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("static_dir", "./static")
	v.SetDefault("dev_mode", false)
}

// DefaultDir is $HOME/.hookline, where the CLI keeps its profiles.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".hookline"), nil
}
