// Package config provides configuration loading and validation for the CLI.
// Values come from an optional JSON file, overridden by environment
// variables, overridden by CLI flags (handled by the commands themselves).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Environment variable names recognized by ApplyEnv.
const (
	EnvAPIKey      = "GEMINI_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
)

// Config represents the CLI configuration that can be loaded from a JSON
// file. Fields left empty fall back to defaults; APIKey and DatabaseURL are
// required once file, environment and flags have all been applied.
type Config struct {
	// Connections
	APIKey      string `json:"api_key,omitempty" validate:"required"`
	DatabaseURL string `json:"database_url,omitempty" validate:"required,url"`

	// Model overrides per tier; empty uses the provider defaults.
	LiteModel     string `json:"lite_model,omitempty"`
	StandardModel string `json:"standard_model,omitempty"`
	AdvancedModel string `json:"advanced_model,omitempty"`

	// Behavior
	RankTimeoutSeconds int  `json:"rank_timeout_seconds,omitempty" validate:"gte=0"`
	BatchDelaySeconds  int  `json:"batch_delay_seconds,omitempty" validate:"gte=0"`
	Verbose            bool `json:"verbose,omitempty"`
	JSONLogs           bool `json:"json_logs,omitempty"`
	Debug              bool `json:"debug,omitempty"`
}

// Default limits applied when the config file leaves them unset.
const (
	DefaultRankTimeoutSeconds = 300
	DefaultBatchDelaySeconds  = 2
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads a JSON config file. An empty path returns a zero config so
// environment-only setups work without a file.
func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overlays environment variables onto unset fields. Values already
// present in the config file win; the environment only fills gaps.
func (c *Config) ApplyEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv(EnvDatabaseURL)
	}
	if c.RankTimeoutSeconds == 0 {
		if v, err := strconv.Atoi(os.Getenv("RANK_TIMEOUT_SECONDS")); err == nil && v > 0 {
			c.RankTimeoutSeconds = v
		}
	}
	if c.BatchDelaySeconds == 0 {
		if v, err := strconv.Atoi(os.Getenv("BATCH_DELAY_SECONDS")); err == nil && v > 0 {
			c.BatchDelaySeconds = v
		}
	}
}

// ApplyDefaults fills remaining zero values with the standard limits.
func (c *Config) ApplyDefaults() {
	if c.RankTimeoutSeconds == 0 {
		c.RankTimeoutSeconds = DefaultRankTimeoutSeconds
	}
	if c.BatchDelaySeconds == 0 {
		c.BatchDelaySeconds = DefaultBatchDelaySeconds
	}
}

// Validate checks the fully merged configuration. Call after ApplyEnv and
// ApplyDefaults; a missing API key or database URL is a hard error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			first := errs[0]
			switch first.Field() {
			case "APIKey":
				return fmt.Errorf("config error: API key is required (set %s or api_key)", EnvAPIKey)
			case "DatabaseURL":
				return fmt.Errorf("config error: database URL is required and must be a URL (set %s or database_url)", EnvDatabaseURL)
			default:
				return fmt.Errorf("config error: field %s failed %s validation", first.Field(), first.Tag())
			}
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// RankTimeout returns the funnel deadline as a duration.
func (c *Config) RankTimeout() time.Duration {
	return time.Duration(c.RankTimeoutSeconds) * time.Second
}

// BatchDelay returns the pause between LLM batch calls as a duration.
func (c *Config) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelaySeconds) * time.Second
}
