package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestInitDirCreatesStructure(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, sub := range []string{"logs", "descargas", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, SesionesDir, sub)); err != nil {
			t.Fatalf("missing %s: %v", sub, err)
		}
	}
	// Re-running must not clobber an existing config.
	path := filepath.Join(dir, SesionesDir, "config.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := InitDir(dir); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "version: 1\n" {
		t.Fatalf("config clobbered: %q", data)
	}
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ServiceURL() != "http://127.0.0.1:5000" {
		t.Fatalf("service url = %q", cfg.ServiceURL())
	}
	if cfg.Timeout() != 60*time.Second {
		t.Fatalf("timeout = %s", cfg.Timeout())
	}
	if filepath.Base(cfg.DownloadsDir()) != "descargas" {
		t.Fatalf("downloads dir = %q", cfg.DownloadsDir())
	}
}

func TestNewConfigReadsFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	if err := InitDir(dir); err != nil {
		t.Fatalf("init: %v", err)
	}
	body := "version: 1\nservice:\n  base_url: http://servicio:8000\n  timeout_seconds: 10\n"
	if err := os.WriteFile(filepath.Join(dir, SesionesDir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := NewConfig(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ServiceURL() != "http://servicio:8000" || cfg.Timeout() != 10*time.Second {
		t.Fatalf("file values not honored: %q %s", cfg.ServiceURL(), cfg.Timeout())
	}

	t.Setenv("SESIONES_SERVICE_URL", "http://otro:9000")
	t.Setenv("SESIONES_TIMEOUT_SECONDS", "5")
	cfg, err = NewConfig(dir)
	if err != nil {
		t.Fatalf("new config with env: %v", err)
	}
	if cfg.ServiceURL() != "http://otro:9000" || cfg.Timeout() != 5*time.Second {
		t.Fatalf("env overrides not honored: %q %s", cfg.ServiceURL(), cfg.Timeout())
	}
}

func TestNewConfigRejectsRelativeURL(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SESIONES_SERVICE_URL", "no-es-una-url")
	if _, err := NewConfig(dir); err == nil {
		t.Fatal("expected error for relative service URL")
	}
}
