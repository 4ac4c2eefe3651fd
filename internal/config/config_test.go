package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Storage.DSN != "sqlite://./test.db" {
			t.Fatalf("expected storage dsn, got %q", cfg.Storage.DSN)
		}
		if cfg.AI.Timeout != 30*time.Second {
			t.Fatalf("expected 30s timeout, got %s", cfg.AI.Timeout)
		}
		if cfg.Autosave.Debounce != 500*time.Millisecond {
			t.Fatalf("expected 500ms debounce, got %s", cfg.Autosave.Debounce)
		}
		if cfg.Import.NameSuffix != " (Copy)" || !cfg.Import.RewriteReferences {
			t.Fatalf("unexpected import config %+v", cfg.Import)
		}
		if !cfg.Worlds.CascadeDelete {
			t.Fatalf("expected cascade delete")
		}
		if cfg.AI.Temperature != 0.3 {
			t.Fatalf("expected default temperature, got %v", cfg.AI.Temperature)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Storage.DSN != "sqlite://worldsmith.db" {
			t.Fatalf("expected default dsn, got %q", cfg.Storage.DSN)
		}
		if cfg.Import.NameSuffix != " (Imported)" {
			t.Fatalf("expected default suffix, got %q", cfg.Import.NameSuffix)
		}
		if cfg.Autosave.Debounce != 2*time.Second {
			t.Fatalf("expected default debounce, got %s", cfg.Autosave.Debounce)
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("WORLDSMITH_STORAGE_DSN", "memory://")
		t.Setenv("WORLDSMITH_AI_API_KEY", "sk-test")
		t.Setenv("WORLDSMITH_LOG_MODE", "prod")
		path := writeTempConfig(t, "project: test\nversion: 1\nstorage:\n  dsn: sqlite://a.db\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Storage.DSN != "memory://" {
			t.Fatalf("expected env dsn, got %q", cfg.Storage.DSN)
		}
		if cfg.AI.APIKey != "sk-test" || cfg.Log.Mode != "prod" {
			t.Fatalf("expected env overrides, got %+v", cfg)
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown storage scheme", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nstorage:\n  dsn: mongodb://localhost\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("sync without user", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nsync:\n  enabled: true\n  endpoint: localhost:9000\n  bucket: worlds\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("bad log mode", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\nlog:\n  mode: loud\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Project != "worldsmith" || cfg.Version != 1 {
		t.Fatalf("unexpected default config %+v", cfg)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Write(path, Default("saga")); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if cfg.Project != "saga" {
		t.Fatalf("expected project saga, got %q", cfg.Project)
	}
	if err := Write(path, Default("saga")); err == nil {
		t.Fatalf("expected error when file exists")
	}
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
