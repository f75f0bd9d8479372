// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/olivier-w/bucketbox/internal/catalog"
	"github.com/olivier-w/bucketbox/internal/visualizer"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Catalog    CatalogConfig      `yaml:"catalog"`
	Search     SearchConfig       `yaml:"search"`
	Playback   PlaybackConfig     `yaml:"playback"`
	Visualizer visualizer.Options `yaml:"visualizer"`
	Log        LogConfig          `yaml:"log"`
}

// CatalogConfig describes the bucket the tracks are listed from and served by.
type CatalogConfig struct {
	Endpoint  string `yaml:"endpoint" default:"s3.amazonaws.com" validate:"required"`
	Bucket    string `yaml:"bucket" validate:"required_without=File"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"use_ssl" default:"true"`
	PageSize  int    `yaml:"page_size" default:"1000" validate:"gte=1,lte=1000"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	// PublicURL overrides the base URL tracks are streamed from.
	PublicURL string `yaml:"public_url" validate:"omitempty,url"`
	// File lists object keys one per line instead of listing the bucket.
	File string `yaml:"file"`
}

// SearchConfig represents search box configuration.
type SearchConfig struct {
	DebounceMs int    `yaml:"debounce_ms" default:"750" validate:"gte=1,lte=10000"`
	Initial    string `yaml:"initial"`
}

// PlaybackConfig represents playback control configuration.
type PlaybackConfig struct {
	Exclusive bool    `yaml:"exclusive" default:"true"`
	PartyMode bool    `yaml:"party_mode"`
	Volume    float64 `yaml:"volume" default:"0.8" validate:"gt=0,lte=1"`
}

// LogConfig represents logger configuration.
type LogConfig struct {
	Level string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	// File is the log file path; "stderr" logs to the terminal.
	File string `yaml:"file"`
}

// Override adjusts a loaded configuration before it is validated, e.g. from
// command-line flags.
type Override func(*Config)

// Load loads configuration from a YAML file. A missing file is not an error:
// defaults and environment variables still apply. Environment variables take
// precedence over file values for the bucket and its credentials, and
// overrides take precedence over both.
func Load(path string, overrides ...Override) (*Config, error) {
	var cfg Config
	// Defaults first so that explicit false and zero values in the file stick.
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, errors.Wrap(err, "failed to read config file")
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, errors.Wrap(err, "failed to parse config file")
			}
		}
	}

	// Override with environment variables
	cfg.overrideFromEnv()
	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("BUCKETBOX_S3_ENDPOINT"); v != "" {
		c.Catalog.Endpoint = v
	}
	if v := os.Getenv("BUCKETBOX_S3_BUCKET"); v != "" {
		c.Catalog.Bucket = v
	}
	if v := os.Getenv("BUCKETBOX_S3_ACCESS_KEY"); v != "" {
		c.Catalog.AccessKey = v
	}
	if v := os.Getenv("BUCKETBOX_S3_SECRET_KEY"); v != "" {
		c.Catalog.SecretKey = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	if (c.Catalog.AccessKey == "") != (c.Catalog.SecretKey == "") {
		return errors.New("catalog access_key and secret_key must be set together")
	}
	return nil
}

// S3Options returns the listing options for the catalog bucket.
func (c *Config) S3Options() catalog.S3Options {
	return catalog.S3Options{
		Endpoint:  c.Catalog.Endpoint,
		Bucket:    c.Catalog.Bucket,
		Region:    c.Catalog.Region,
		Prefix:    c.Catalog.Prefix,
		AccessKey: c.Catalog.AccessKey,
		SecretKey: c.Catalog.SecretKey,
		UseSSL:    c.Catalog.UseSSL,
		PageSize:  c.Catalog.PageSize,
	}
}

// BaseURL returns where tracks are fetched from.
func (c *Config) BaseURL() string {
	if c.Catalog.PublicURL != "" {
		return c.Catalog.PublicURL
	}
	return catalog.PublicURL(c.S3Options())
}

// Debounce returns the search quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Search.DebounceMs) * time.Millisecond
}
