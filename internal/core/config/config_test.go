package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lv2fix/internal/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lv2fix.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[provider]
backend = "Catalog"
catalog_path = "ports.db"

[filter]
include = ["http://lsp-plug.in/*"]
exclude = ["urn:test:*"]

[diagnostics]
warn_overlapping_edits = false

[backup]
extension = ".bak"

[observability]
metrics_file = "/var/lib/node_exporter/lv2fix.prom"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider.Backend != BackendCatalog {
		t.Errorf("backend = %q, want %q", cfg.Provider.Backend, BackendCatalog)
	}
	if want := filepath.Join(filepath.Dir(path), "ports.db"); cfg.Provider.CatalogPath != want {
		t.Errorf("catalog_path = %q, want %q", cfg.Provider.CatalogPath, want)
	}
	if cfg.Observability.MetricsFile != "/var/lib/node_exporter/lv2fix.prom" {
		t.Errorf("absolute metrics_file changed: %q", cfg.Observability.MetricsFile)
	}
	if len(cfg.Filter.Include) != 1 || len(cfg.Filter.Exclude) != 1 {
		t.Errorf("unexpected filter: %+v", cfg.Filter)
	}
	if cfg.Diagnostics.WarnOverlaps() {
		t.Error("warn_overlapping_edits = false was not honoured")
	}
	if cfg.Backup.Extension != "bak" {
		t.Errorf("extension = %q, want %q", cfg.Backup.Extension, "bak")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Version != 1 {
		t.Errorf("version = %d", cfg.Version)
	}
	if cfg.Provider.Backend != BackendLilv {
		t.Errorf("backend = %q", cfg.Provider.Backend)
	}
	if !cfg.Diagnostics.WarnOverlaps() {
		t.Error("overlap warnings should default to on")
	}
	if cfg.Backup.Extension != DefaultBackupExtension {
		t.Errorf("extension = %q", cfg.Backup.Extension)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
}

func TestResolveMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.toml")

	cfg, err := Resolve(missing, false)
	if err != nil {
		t.Fatalf("implicit missing config should yield defaults: %v", err)
	}
	if cfg.Provider.Backend != BackendLilv {
		t.Errorf("backend = %q", cfg.Provider.Backend)
	}

	_, err = Resolve(missing, true)
	if err == nil {
		t.Fatal("explicit missing config should fail")
	}
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Errorf("expected CodeNotFound, got %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "[provider]\nbackend = \"lilv\"\nplugin_dir = \"/usr/lib/lv2\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "provider.plugin_dir") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := writeConfig(t, "[provider\n")
	_, err := Load(path)
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LV2FIX_PROVIDER_BACKEND", "catalog")
	t.Setenv("LV2FIX_PROVIDER_CATALOG_PATH", "/tmp/ports.db")
	t.Setenv("LV2FIX_DIAGNOSTICS_WARN_OVERLAPPING_EDITS", "false")

	cfg, err := Load(writeConfig(t, "version = 1\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider.Backend != BackendCatalog || cfg.Provider.CatalogPath != "/tmp/ports.db" {
		t.Errorf("env overrides not applied: %+v", cfg.Provider)
	}
	if cfg.Diagnostics.WarnOverlaps() {
		t.Error("env override for overlap warnings not applied")
	}
}

func TestEnvPathsStayRelativeToWorkingDir(t *testing.T) {
	t.Setenv("LV2FIX_PROVIDER_CATALOG_PATH", "catalogs/ports.db")
	t.Setenv("LV2FIX_OBSERVABILITY_METRICS_FILE", " lv2fix.prom ")

	path := writeConfig(t, "[provider]\nbackend = \"catalog\"\ncatalog_path = \"file.db\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider.CatalogPath != "catalogs/ports.db" {
		t.Errorf("catalog path = %q, want it unresolved", cfg.Provider.CatalogPath)
	}
	if cfg.Observability.MetricsFile != "lv2fix.prom" {
		t.Errorf("metrics file = %q", cfg.Observability.MetricsFile)
	}

	cfg, err = Resolve(filepath.Join(t.TempDir(), "absent.toml"), false)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if cfg.Provider.CatalogPath != "catalogs/ports.db" {
		t.Errorf("default catalog path = %q, want it unresolved", cfg.Provider.CatalogPath)
	}
}
