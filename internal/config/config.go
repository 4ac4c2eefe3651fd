package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"worldsmith/internal/store"
)

// FileName is the project config looked up in the working directory.
const FileName = "worldsmith.yaml"

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Import   ImportConfig   `yaml:"import"`
	Worlds   WorldsConfig   `yaml:"worlds"`
	Autosave AutosaveConfig `yaml:"autosave"`
	Sync     SyncConfig     `yaml:"sync"`
	Log      LogConfig      `yaml:"log"`
	Sources  []string       `yaml:"sources,omitempty"`
	Exclude  []string       `yaml:"exclude,omitempty"`
}

type StorageConfig struct {
	DSN string `yaml:"dsn" env:"WORLDSMITH_STORAGE_DSN"`
}

type AIConfig struct {
	BaseURL     string        `yaml:"base_url" env:"WORLDSMITH_AI_BASE_URL"`
	APIKey      string        `yaml:"api_key,omitempty" env:"WORLDSMITH_AI_API_KEY"`
	Model       string        `yaml:"model" env:"WORLDSMITH_AI_MODEL"`
	Temperature float64       `yaml:"temperature" env:"WORLDSMITH_AI_TEMPERATURE"`
	Timeout     time.Duration `yaml:"timeout" env:"WORLDSMITH_AI_TIMEOUT"`
	MaxRetries  int           `yaml:"max_retries" env:"WORLDSMITH_AI_MAX_RETRIES"`
}

type ImportConfig struct {
	NameSuffix        string `yaml:"name_suffix" env:"WORLDSMITH_IMPORT_NAME_SUFFIX"`
	RewriteReferences bool   `yaml:"rewrite_references" env:"WORLDSMITH_IMPORT_REWRITE_REFERENCES"`
}

type WorldsConfig struct {
	CascadeDelete bool `yaml:"cascade_delete" env:"WORLDSMITH_CASCADE_DELETE"`
}

type AutosaveConfig struct {
	Debounce time.Duration `yaml:"debounce" env:"WORLDSMITH_AUTOSAVE_DEBOUNCE"`
}

type SyncConfig struct {
	Enabled   bool   `yaml:"enabled" env:"WORLDSMITH_SYNC_ENABLED"`
	UserID    string `yaml:"user_id,omitempty" env:"WORLDSMITH_SYNC_USER_ID"`
	Endpoint  string `yaml:"endpoint,omitempty" env:"WORLDSMITH_SYNC_ENDPOINT"`
	Bucket    string `yaml:"bucket,omitempty" env:"WORLDSMITH_SYNC_BUCKET"`
	AccessKey string `yaml:"access_key,omitempty" env:"WORLDSMITH_SYNC_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key,omitempty" env:"WORLDSMITH_SYNC_SECRET_KEY"`
	Secure    bool   `yaml:"secure" env:"WORLDSMITH_SYNC_SECURE"`
}

type LogConfig struct {
	Mode string `yaml:"mode" env:"WORLDSMITH_LOG_MODE"`
}

// Default returns the configuration written by `worldsmith init`.
func Default(project string) *ProjectConfig {
	cfg := &ProjectConfig{Project: project, Version: 1}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "sqlite://worldsmith.db"
	}
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = "https://api.openai.com"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gpt-4o-mini"
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.3
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 2 * time.Minute
	}
	if cfg.AI.MaxRetries == 0 {
		cfg.AI.MaxRetries = 3
	}
	if cfg.Import.NameSuffix == "" {
		cfg.Import.NameSuffix = " (Imported)"
	}
	if cfg.Autosave.Debounce == 0 {
		cfg.Autosave.Debounce = 2 * time.Second
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "dev"
	}
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	return finish(&cfg)
}

// LoadOrDefault loads path, falling back to Default when the file does not
// exist. Environment overrides apply either way.
func LoadOrDefault(path string) (*ProjectConfig, error) {
	cfg, err := LoadProjectConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		return finish(&ProjectConfig{Project: "worldsmith", Version: 1})
	}
	return cfg, err
}

func finish(cfg *ProjectConfig) (*ProjectConfig, error) {
	if err := ParseEnv(cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	applyDefaults(cfg)
	if err := validateProjectConfig(cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	return cfg, nil
}

// ParseEnv overlays environment variables onto target. Unset variables
// leave fields untouched.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Write saves cfg as YAML. Existing files are not overwritten.
func Write(path string, cfg *ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if _, err := store.Scheme(cfg.Storage.DSN); err != nil {
		return err
	}
	if cfg.AI.MaxRetries < 0 {
		return fmt.Errorf("ai max_retries must not be negative")
	}
	if cfg.AI.Timeout < 0 {
		return fmt.Errorf("ai timeout must not be negative")
	}
	if cfg.Autosave.Debounce < 0 {
		return fmt.Errorf("autosave debounce must not be negative")
	}
	switch strings.ToLower(cfg.Log.Mode) {
	case "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("unknown log mode: %s", cfg.Log.Mode)
	}
	if cfg.Sync.Enabled {
		if strings.TrimSpace(cfg.Sync.UserID) == "" {
			return fmt.Errorf("sync user_id is required when sync is enabled")
		}
		if strings.TrimSpace(cfg.Sync.Endpoint) == "" || strings.TrimSpace(cfg.Sync.Bucket) == "" {
			return fmt.Errorf("sync endpoint and bucket are required when sync is enabled")
		}
	}
	return nil
}
