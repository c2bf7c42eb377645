// Package config provides the configuration of the tools host.
package config

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/gworks/tools"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/go-playground/validator/v10"
)

// Defaults
const (
	DefaultWhisperBaseURL = "http://localhost:8000"
	DefaultWhisperModel   = "whisper-1"
	DefaultWhisperTimeout = 120 * time.Second
	DefaultStorePrefix    = "gworks"
)

type Config struct {
	// Locale specifies the locale of labels, en_US by default
	Locale string `json:"locale,omitempty" yaml:"locale,omitempty" validate:"omitempty,oneof=en_US ja_JP"`
	// Whisper specifies the transcription service
	Whisper WhisperConfig `json:"whisper" yaml:"whisper"`
	// FileStore specifies the storage of host files
	FileStore FileStoreConfig `json:"file_store" yaml:"file_store"`
	// ToolInputs specifies default inputs per tool.
	// key is the tool name, value is the map of parameter values.
	// Inputs provided by the caller override the defaults.
	ToolInputs map[string]map[string]any `json:"tool_inputs,omitempty" yaml:"tool_inputs,omitempty"`
}

// WhisperConfig specifies the transcription service
type WhisperConfig struct {
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Model   string `json:"model,omitempty" yaml:"model,omitempty"`
	// Timeout specifies the request timeout, as duration string: 30s, 2m
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// GetTimeout returns the parsed Timeout, or the default.
func (c *WhisperConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultWhisperTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultWhisperTimeout
	}
	return d
}

// FileStoreConfig specifies the storage of host files.
// The memory store is used when RedisURL is empty.
type FileStoreConfig struct {
	RedisURL string `json:"redis_url,omitempty" yaml:"redis_url,omitempty" validate:"omitempty,url"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	// TTL specifies expiration of stored files, as duration string.
	// Files do not expire if not set.
	TTL string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// GetTTL returns the parsed TTL, or zero.
func (c *FileStoreConfig) GetTTL() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return max(d, 0)
}

var validate = validator.New()

// Default returns configuration with defaults
func Default() *Config {
	cfg := new(Config)
	cfg.setDefaults()
	return cfg
}

// Load returns configuration from file,
// or the defaults if file is empty.
func Load(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		err := configloader.UnmarshalAndExpand(file, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load config %q", file)
		}
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns error if the configuration is invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if c.Whisper.Timeout != "" {
		if d, err := time.ParseDuration(c.Whisper.Timeout); err != nil || d <= 0 {
			return errors.Newf("invalid config: whisper timeout %q", c.Whisper.Timeout)
		}
	}
	if c.FileStore.TTL != "" {
		if d, err := time.ParseDuration(c.FileStore.TTL); err != nil || d < 0 {
			return errors.Newf("invalid config: file store ttl %q", c.FileStore.TTL)
		}
	}
	return nil
}

// GetToolInputs returns default inputs of the tool.
func (c *Config) GetToolInputs(tool string) map[string]any {
	return c.ToolInputs[tool]
}

func (c *Config) setDefaults() {
	c.Locale = values.StringsCoalesce(c.Locale, tools.DefaultLocale)
	c.Whisper.BaseURL = values.StringsCoalesce(c.Whisper.BaseURL, DefaultWhisperBaseURL)
	c.Whisper.Model = values.StringsCoalesce(c.Whisper.Model, DefaultWhisperModel)
	c.FileStore.Prefix = values.StringsCoalesce(c.FileStore.Prefix, DefaultStorePrefix)
}
