package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
)

// Config holds every runtime setting of the client and the mock backend.
type Config struct {
	// BackendURL is the base of the personality/matching REST API.
	BackendURL string `env:"SIMILR_BACKEND_URL" envDefault:"http://localhost:8000/"`

	// HTTPTimeout bounds a single request.
	HTTPTimeout time.Duration `env:"SIMILR_HTTP_TIMEOUT" envDefault:"15s"`

	// SubmitDelay is waited after a successful submission before the next fetch.
	SubmitDelay time.Duration `env:"SIMILR_SUBMIT_DELAY" envDefault:"0s"`

	// TemplateCacheTTL is how long the prompt template list is reused.
	TemplateCacheTTL time.Duration `env:"SIMILR_TEMPLATE_CACHE_TTL" envDefault:"5m"`

	// TrackAccuracy enables accuracy change notices.
	TrackAccuracy bool `env:"SIMILR_TRACK_ACCURACY" envDefault:"false"`

	// DBPath overrides the default database location.
	DBPath string `env:"SIMILR_DB"`

	// LogFile receives structured logs. Empty disables logging.
	LogFile  string `env:"SIMILR_LOG_FILE"`
	LogLevel string `env:"SIMILR_LOG_LEVEL" envDefault:"info"`

	// MockAddr is the listen address of serve-mock.
	MockAddr string `env:"SIMILR_MOCK_ADDR" envDefault:":8000"`
}

// DefaultConfig returns the configuration with every default applied and no
// environment overrides.
func DefaultConfig() Config {
	var cfg Config
	// Defaults are static tags; parsing an empty environment cannot fail.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

// Load reads envFiles, then the process environment. With no files it reads
// ./.env if one exists; named files must exist.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom parses cfg from an explicit environment map, ignoring the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("SIMILR_BACKEND_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("SIMILR_BACKEND_URL must be http or https, got %q", c.BackendURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("SIMILR_HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}
	if c.SubmitDelay < 0 {
		return fmt.Errorf("SIMILR_SUBMIT_DELAY must not be negative, got %s", c.SubmitDelay)
	}
	if c.TemplateCacheTTL < 0 {
		return fmt.Errorf("SIMILR_TEMPLATE_CACHE_TTL must not be negative, got %s", c.TemplateCacheTTL)
	}
	if _, err := c.ZapLevel(); err != nil {
		return err
	}
	return nil
}

// ZapLevel parses LogLevel.
func (c Config) ZapLevel() (zapcore.Level, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("SIMILR_LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// BaseURL returns BackendURL with a guaranteed trailing slash.
func (c Config) BaseURL() string {
	if strings.HasSuffix(c.BackendURL, "/") {
		return c.BackendURL
	}
	return c.BackendURL + "/"
}
