package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the portal
type Config struct {
	Env         string        `yaml:"env" env:"PORTAL_ENV" env-default:"local"`
	StoragePath string        `yaml:"storage_path" env:"PORTAL_STORAGE_PATH" env-default:"./storage/portal.db"`
	Log         LogConfig     `yaml:"log"`
	HTTP        HTTPConfig    `yaml:"http"`
	Backend     BackendConfig `yaml:"backend"`
	Session     SessionConfig `yaml:"session"`
	Cache       CacheConfig   `yaml:"cache"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"PORTAL_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"PORTAL_LOG_FORMAT" env-default:"json"`
}

type HTTPConfig struct {
	Address      string `yaml:"address" env:"PORTAL_HTTP_ADDRESS" env-default:"localhost:8080"`
	ReadTimeout  int    `yaml:"read_timeout" env:"PORTAL_HTTP_READ_TIMEOUT" env-default:"15"`   // seconds
	WriteTimeout int    `yaml:"write_timeout" env:"PORTAL_HTTP_WRITE_TIMEOUT" env-default:"15"` // seconds
	IdleTimeout  int    `yaml:"idle_timeout" env:"PORTAL_HTTP_IDLE_TIMEOUT" env-default:"60"`   // seconds
}

type BackendConfig struct {
	BaseURL string `yaml:"base_url" env:"PORTAL_BACKEND_URL" env-required:"true"`
	Timeout int    `yaml:"timeout" env:"PORTAL_BACKEND_TIMEOUT" env-default:"10"` // seconds
}

type SessionConfig struct {
	CookieName      string `yaml:"cookie_name" env:"PORTAL_SESSION_COOKIE" env-default:"portal_session"`
	SecureCookie    bool   `yaml:"secure_cookie" env:"PORTAL_SESSION_SECURE" env-default:"false"`
	DefaultTTL      int    `yaml:"default_ttl" env:"PORTAL_SESSION_TTL" env-default:"28800"`                  // seconds, used when the token carries no expiry
	CleanupInterval int    `yaml:"cleanup_interval" env:"PORTAL_SESSION_CLEANUP_INTERVAL" env-default:"300"` // seconds
	// Secret signs the flash and CSRF cookies. When empty a random key is
	// generated at startup, so pending toasts and form tokens do not
	// survive a restart.
	Secret string `yaml:"secret" env:"PORTAL_SESSION_SECRET"`
}

// MinSecretLength is the shortest accepted session secret, in bytes.
const MinSecretLength = 32

type CacheConfig struct {
	StaleTime       int `yaml:"stale_time" env:"PORTAL_CACHE_STALE_TIME" env-default:"30"`                // seconds
	GCTime          int `yaml:"gc_time" env:"PORTAL_CACHE_GC_TIME" env-default:"300"`                     // seconds
	CleanupInterval int `yaml:"cleanup_interval" env:"PORTAL_CACHE_CLEANUP_INTERVAL" env-default:"10"`    // seconds
	FetchTimeout    int `yaml:"fetch_timeout" env:"PORTAL_CACHE_FETCH_TIMEOUT" env-default:"15"`          // seconds
	RenderWait      int `yaml:"render_wait" env:"PORTAL_CACHE_RENDER_WAIT" env-default:"1500"`            // milliseconds a page waits before showing a spinner
}

// LoadConfig reads the YAML file at path, applying environment overrides.
// A missing file is not an error: the config is then read from the
// environment alone.
func LoadConfig(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read config from environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base_url is required")
	}
	if c.Cache.StaleTime < 0 || c.Cache.GCTime < 0 {
		return fmt.Errorf("cache times must not be negative")
	}
	if c.Cache.GCTime < c.Cache.StaleTime {
		return fmt.Errorf("cache gc_time (%d) must be >= stale_time (%d)", c.Cache.GCTime, c.Cache.StaleTime)
	}
	if c.Session.DefaultTTL <= 0 {
		return fmt.Errorf("session default_ttl must be positive")
	}
	if c.Session.CleanupInterval <= 0 {
		return fmt.Errorf("session cleanup_interval must be positive")
	}
	if c.Session.Secret != "" && len(c.Session.Secret) < MinSecretLength {
		return fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	return nil
}
