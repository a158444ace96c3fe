package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeTemp(t, "cbm.toml", "param_count = 1000000\nlog_level = \"debug\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ParamCount != 1_000_000 {
		t.Errorf("ParamCount = %d, want 1000000", cfg.ParamCount)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "cbm.yaml", "param_count: 42\nlog_level: warn\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ParamCount != 42 || cfg.LogLevel != "warn" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "cbm.json", `{"param_count": 7, "log_level": "info"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ParamCount != 7 || cfg.LogLevel != "info" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeTemp(t, "cbm.ini", "param_count = 1")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("no/such/file.toml"); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
