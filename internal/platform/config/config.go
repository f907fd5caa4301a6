package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	FileName = "config.yaml"
)

// Config is resolved in three layers: defaults, the optional YAML file in the
// data directory, then MAMATIMER_* environment variables.
type Config struct {
	DataDir             string `yaml:"-"`
	Backend             string `yaml:"backend" env:"MAMATIMER_BACKEND"`
	DBPath              string `yaml:"db_path" env:"MAMATIMER_DB_PATH"`
	Timezone            string `yaml:"timezone" env:"MAMATIMER_TIMEZONE"`
	FetalSessionSeconds int    `yaml:"fetal_session_seconds" env:"MAMATIMER_FETAL_SESSION_SECONDS"`
	CoolDownSeconds     int    `yaml:"cool_down_seconds" env:"MAMATIMER_COOL_DOWN_SECONDS"`
	LogLevel            string `yaml:"log_level" env:"MAMATIMER_LOG_LEVEL"`
	LogFile             string `yaml:"log_file" env:"MAMATIMER_LOG_FILE"`
	Notifications       bool   `yaml:"notifications" env:"MAMATIMER_NOTIFICATIONS"`
}

func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	return Config{
		DataDir:             dataDir,
		Backend:             BackendFile,
		DBPath:              filepath.Join(dataDir, "mamatimer.db"),
		Timezone:            "Local",
		FetalSessionSeconds: 3600,
		CoolDownSeconds:     300,
		LogLevel:            "info",
		LogFile:             filepath.Join(dataDir, "logs", "mamatimer.log"),
		Notifications:       true,
	}, nil
}

// Load builds a Config for dataDir. An empty file means <dataDir>/config.yaml,
// which may be absent; an explicit file must exist.
func Load(dataDir, file string) (Config, error) {
	cfg, err := New(dataDir)
	if err != nil {
		return Config{}, err
	}
	explicit := strings.TrimSpace(file) != ""
	if !explicit {
		file = filepath.Join(dataDir, FileName)
	}
	payload, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(payload, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", file, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DBPath != "" && !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(dataDir, cfg.DBPath)
	}
	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(dataDir, cfg.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendMemory:
	case BackendSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("db path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unsupported backend %q", c.Backend)
	}
	if c.FetalSessionSeconds <= 0 {
		return fmt.Errorf("fetal session length must be positive")
	}
	if c.CoolDownSeconds <= 0 {
		return fmt.Errorf("cool-down must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) FetalSessionLength() time.Duration {
	return time.Duration(c.FetalSessionSeconds) * time.Second
}

func (c Config) CoolDown() time.Duration {
	return time.Duration(c.CoolDownSeconds) * time.Second
}
