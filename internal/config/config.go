package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = "acctree.yaml"

// Config represents the top-level acctree.yaml configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Audit    AuditConfig    `yaml:"audit"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"required,oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// AuditConfig controls the CSV audit trail. An empty path disables it.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=debug info warn warning error"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// env lists the variables that override the file. Each is read as
// ACCTREE_<NAME>, falling back to the bare <NAME>.
type env struct {
	DBDriver        string `envconfig:"DB_DRIVER"`
	DBDSN           string `envconfig:"DB_DSN"`
	AuditPath       string `envconfig:"AUDIT_PATH"`
	LogLevel        string `envconfig:"LOG_LEVEL"`
	LogFile         string `envconfig:"LOG_FILE"`
	MetricsTextfile string `envconfig:"METRICS_TEXTFILE"`
}

// Default returns a Config for a local SQLite database.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "acctree.db",
		},
		Audit: AuditConfig{
			Path: "logs/acctree-audit.csv",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads an acctree.yaml file from disk. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overlays environment variables, after loading a .env file from
// the working directory if there is one. Variables already set in the
// environment win over .env.
func ApplyEnv(cfg *Config) error {
	_ = godotenv.Load()

	var e env
	if err := envconfig.Process("acctree", &e); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Database.Driver, e.DBDriver)
	set(&cfg.Database.DSN, e.DBDSN)
	set(&cfg.Audit.Path, e.AuditPath)
	set(&cfg.Log.Level, e.LogLevel)
	set(&cfg.Log.File, e.LogFile)
	set(&cfg.Metrics.Textfile, e.MetricsTextfile)
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
