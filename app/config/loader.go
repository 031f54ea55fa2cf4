package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "portfolio.yaml"

// Load reads path over the defaults, applies environment overrides and validates the
// result. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read the config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Write saves cfg as YAML, used by `portfolio init` to drop a starter file.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup("PORTFOLIO_ADDR"); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := lookup("PORTFOLIO_DB_DRIVER"); ok && v != "" {
		cfg.Database.Driver = strings.ToLower(v)
	}
	if v, ok := lookup("PORTFOLIO_DB_PATH"); ok && v != "" {
		cfg.Database.Path = v
	}
	if v, ok := lookup("DATABASE_URL"); ok && v != "" {
		cfg.Database.URL = v
	}
	if v, ok := lookup("PORTFOLIO_LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup("PORTFOLIO_LOG_FORMAT"); ok && v != "" {
		cfg.Log.Format = strings.ToLower(v)
	}
	if v, ok := lookup("DEBUG"); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEBUG: %w", err)
		}
		if debug {
			cfg.Log.Level = "debug"
		}
	}
	if v, ok := lookup("PORTFOLIO_SECURE_COOKIES"); ok && v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PORTFOLIO_SECURE_COOKIES: %w", err)
		}
		cfg.Session.Secure = secure
	}
	return nil
}
