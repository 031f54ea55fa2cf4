// Package config loads the service configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Database drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Session  SessionConfig  `yaml:"session"`
	Comments CommentsConfig `yaml:"comments"`
	Paths    PathsConfig    `yaml:"paths"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// Path is the badger directory.
	Path string `yaml:"path"`
	// URL is the postgres connection string.
	URL string `yaml:"url"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

// CommentsConfig rate limits comment submissions per client address. A zero rate
// disables the limit.
type CommentsConfig struct {
	RatePerMinute float64 `yaml:"rate_per_minute"`
	Burst         int     `yaml:"burst"`
}

type PathsConfig struct {
	Views     string `yaml:"views"`
	Static    string `yaml:"static"`
	Media     string `yaml:"media"`
	BackupDir string `yaml:"backup_dir"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverBadger,
			Path:   "data/badger",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Session: SessionConfig{
			CookieName: "sessionid",
			TTL:        14 * 24 * time.Hour,
		},
		Comments: CommentsConfig{
			RatePerMinute: 6,
			Burst:         3,
		},
		Paths: PathsConfig{
			Views:     "app/views",
			Static:    "static",
			Media:     "uploads",
			BackupDir: "data/backups",
		},
	}
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverBadger:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database.path is required for the badger driver"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url (or DATABASE_URL) is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Comments.RatePerMinute < 0 || c.Comments.Burst < 0 {
		errs = append(errs, errors.New("comments rate limit cannot be negative"))
	}
	return errors.Join(errs...)
}
