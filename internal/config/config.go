// Package config loads pagecomments settings.
//
// Values are layered: built-in defaults, then the YAML file at Path, then a
// .env file in the working directory, then PC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/evcraddock/pagecomments/internal/client"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "PC_"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds runtime configuration for the widget server and the CLI.
type Config struct {
	// Comments service
	APIURL         string        `yaml:"api_url" env:"API_URL" validate:"required,url"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" validate:"min=0"`

	// Widget server
	Port          int      `yaml:"port" env:"PORT" validate:"min=1,max=65535"`
	DefaultLocale string   `yaml:"default_locale" env:"DEFAULT_LOCALE" validate:"required"`
	Locales       []string `yaml:"locales" env:"LOCALES" validate:"required,min=1"`
	AllowRating   bool     `yaml:"allow_rating" env:"ALLOW_RATING"`

	CacheTTL  time.Duration `yaml:"cache_ttl" env:"CACHE_TTL" validate:"min=0"`
	CacheSize int           `yaml:"cache_size" env:"CACHE_SIZE" validate:"min=1"`

	// Submissions per second per client IP; zero disables throttling.
	SubmitRate  float64 `yaml:"submit_rate" env:"SUBMIT_RATE" validate:"min=0"`
	SubmitBurst int     `yaml:"submit_burst" env:"SUBMIT_BURST" validate:"min=0"`

	SentryDSN   string `yaml:"sentry_dsn,omitempty" env:"SENTRY_DSN"`
	Environment string `yaml:"environment" env:"ENVIRONMENT"`
	DevMode     bool   `yaml:"dev_mode" env:"DEV_MODE"`

	// Local comments service database; empty means db.DefaultPath.
	DBPath        string        `yaml:"db_path,omitempty" env:"DB_PATH"`
	DBBusyTimeout time.Duration `yaml:"db_busy_timeout" env:"DB_BUSY_TIMEOUT" validate:"min=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:         client.DefaultBaseURL,
		RequestTimeout: 10 * time.Second,
		Port:           8080,
		DefaultLocale:  "en",
		Locales:        []string{"en", "de", "fr"},
		CacheTTL:       30 * time.Second,
		CacheSize:      256,
		SubmitRate:     0.2,
		SubmitBurst:    3,
		Environment:    "production",
		DBBusyTimeout:  5 * time.Second,
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pagecomments", "config.yaml"), nil
}

// Load builds the configuration from defaults, the file at path, .env and
// the environment. A missing file or .env is not an error.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile returns the defaults overlaid with the YAML file at path.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks value ranges and that the default locale is enabled.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !slices.Contains(c.Locales, c.DefaultLocale) {
		return fmt.Errorf("invalid config: default locale %q is not in locales %v", c.DefaultLocale, c.Locales)
	}
	return nil
}

// Keys lists the settings accepted by Set.
var Keys = []string{
	"api_url", "request_timeout", "port", "default_locale", "locales", "allow_rating",
	"cache_ttl", "cache_size", "submit_rate", "submit_burst", "sentry_dsn", "environment",
	"dev_mode", "db_path", "db_busy_timeout",
}

// Set assigns a single setting from its string form.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "api_url":
		c.APIURL = value
	case "request_timeout":
		c.RequestTimeout, err = time.ParseDuration(value)
	case "port":
		c.Port, err = strconv.Atoi(value)
	case "default_locale":
		c.DefaultLocale = value
	case "locales":
		c.Locales = splitList(value)
	case "allow_rating":
		c.AllowRating, err = strconv.ParseBool(value)
	case "cache_ttl":
		c.CacheTTL, err = time.ParseDuration(value)
	case "cache_size":
		c.CacheSize, err = strconv.Atoi(value)
	case "submit_rate":
		c.SubmitRate, err = strconv.ParseFloat(value, 64)
	case "submit_burst":
		c.SubmitBurst, err = strconv.Atoi(value)
	case "sentry_dsn":
		c.SentryDSN = value
	case "environment":
		c.Environment = value
	case "dev_mode":
		c.DevMode, err = strconv.ParseBool(value)
	case "db_path":
		c.DBPath = value
	case "db_busy_timeout":
		c.DBBusyTimeout, err = time.ParseDuration(value)
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
