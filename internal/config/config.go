// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Defaults used when neither the environment nor a config file sets a value.
const (
	DefaultPort         = 8080
	DefaultUploadDir    = ".uploads"
	DefaultMaxUploadMB  = 10
	DefaultAllowOrigin  = "*"
	DefaultKeywordLimit = 8
)

// Config holds the server settings. Every field can come from a JSON file
// or from the environment; the environment wins.
type Config struct {
	Port         int    `json:"port,omitempty" validate:"min=1,max=65535"`        // PORT
	UploadDir    string `json:"upload_dir,omitempty"`                             // UPLOAD_DIR
	MaxUploadMB  int    `json:"max_upload_mb,omitempty" validate:"min=1,max=100"` // MAX_UPLOAD_MB
	AllowOrigin  string `json:"cors_allow_origin,omitempty" validate:"required"`  // CORS_ALLOW_ORIGIN
	KeywordLimit int    `json:"keyword_limit,omitempty" validate:"min=1,max=100"` // KEYWORD_LIMIT
	LogFile      string `json:"log_file,omitempty"`                               // LOG_FILE
	Verbose      bool   `json:"verbose,omitempty"`                                // VERBOSE
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:         DefaultPort,
		UploadDir:    DefaultUploadDir,
		MaxUploadMB:  DefaultMaxUploadMB,
		AllowOrigin:  DefaultAllowOrigin,
		KeywordLimit: DefaultKeywordLimit,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
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

// FromEnv returns base overridden by any of the recognized environment
// variables. Unparseable numbers are reported rather than ignored.
func FromEnv(base Config) (Config, error) {
	cfg := base

	if err := envInt("PORT", &cfg.Port); err != nil {
		return cfg, err
	}
	if err := envInt("MAX_UPLOAD_MB", &cfg.MaxUploadMB); err != nil {
		return cfg, err
	}
	if err := envInt("KEYWORD_LIMIT", &cfg.KeywordLimit); err != nil {
		return cfg, err
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("CORS_ALLOW_ORIGIN"); v != "" {
		cfg.AllowOrigin = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("config error: VERBOSE: %w", err)
		}
		cfg.Verbose = b
	}

	return cfg, nil
}

// Load builds the effective configuration: defaults, then the optional JSON
// file at path, then the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg.MergeWithDefaults(cfg)
	}

	cfg, err := FromEnv(cfg)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			ve := verrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' (value %v)", ve.Field(), ve.Tag(), ve.Value())
		}
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.UploadDir == "" {
		result.UploadDir = defaults.UploadDir
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}
	if result.AllowOrigin == "" {
		result.AllowOrigin = defaults.AllowOrigin
	}
	if result.KeywordLimit == 0 {
		result.KeywordLimit = defaults.KeywordLimit
	}
	if result.LogFile == "" {
		result.LogFile = defaults.LogFile
	}

	// Bools cannot distinguish unset from false, so they are not merged.

	return result
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config error: %s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}
