// Package config loads client settings from defaults, a YAML file, a .env
// file and ROOMMASTER_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/and161185/roommaster/internal/httpclient"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ROOMMASTER_"

// Config holds client settings.
type Config struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	UserAgent         string        `yaml:"user_agent"`
	StorePath         string        `yaml:"store_path"`
	// StorePassphrase enables at-rest encryption of the local store.
	// Only read from the environment.
	StorePassphrase string `yaml:"-"`
	LogLevel        string `yaml:"log_level"`
}

// Dir is the per-user configuration directory.
func Dir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "roommaster")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "roommaster")
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		BaseURL:           "http://localhost:3000/v1",
		Timeout:           httpclient.DefaultTimeout,
		RequestsPerSecond: 10,
		Burst:             5,
		UserAgent:         "roommaster-cli",
		StorePath:         filepath.Join(Dir(), "store.db"),
		LogLevel:          "warn",
	}
}

// HTTP returns the transport settings.
func (c *Config) HTTP() httpclient.Config {
	return httpclient.Config{
		BaseURL:           c.BaseURL,
		Timeout:           c.Timeout,
		RequestsPerSecond: c.RequestsPerSecond,
		Burst:             c.Burst,
		UserAgent:         c.UserAgent,
	}
}

// Load builds the configuration. Missing files are skipped; an empty path
// skips that layer.
func Load(file, envFile string) (*Config, error) {
	return load(file, envFile, os.LookupEnv)
}

func load(file, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if err := loadYAML(file, cfg); err != nil {
		return nil, err
	}

	dotenv := map[string]string{}
	if envFile != "" {
		m, err := godotenv.Read(envFile)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		default:
			dotenv = m
		}
	}
	get := func(key string) (string, bool) {
		if v, ok := lookup(EnvPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[EnvPrefix+key]
		return v, ok
	}
	if err := applyEnv(cfg, get); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func loadYAML(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, get func(string) (string, bool)) error {
	if v, ok := get("BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := get("TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Timeout = d
	}
	if v, ok := get("RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sRPS: %w", EnvPrefix, err)
		}
		cfg.RequestsPerSecond = f
	}
	if v, ok := get("BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sBURST: %w", EnvPrefix, err)
		}
		cfg.Burst = n
	}
	if v, ok := get("STORE"); ok {
		cfg.StorePath = v
	}
	if v, ok := get("STORE_PASSPHRASE"); ok {
		cfg.StorePassphrase = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	return nil
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("config: base url is required")
	case c.Timeout <= 0:
		return errors.New("config: timeout must be positive")
	case c.RequestsPerSecond < 0:
		return errors.New("config: requests per second must not be negative")
	case c.StorePath == "":
		return errors.New("config: store path is required")
	}
	return nil
}
