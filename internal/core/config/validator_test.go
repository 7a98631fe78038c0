package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Provider.Backend = "ladspa" }, "provider.backend must be one of"},
		{"catalog without path", func(c *Config) { c.Provider.Backend = BackendCatalog }, "provider.catalog_path must be set"},
		{"catalog with path", func(c *Config) {
			c.Provider.Backend = BackendCatalog
			c.Provider.CatalogPath = "ports.db"
		}, ""},
		{"bad include glob", func(c *Config) { c.Filter.Include = []string{"urn:[x"} }, "filter.include[0]"},
		{"bad exclude glob", func(c *Config) { c.Filter.Exclude = []string{"ok", "[a-"} }, "filter.exclude[1]"},
		{"empty extension", func(c *Config) { c.Backup.Extension = "" }, "backup.extension must not be empty"},
		{"extension with separator", func(c *Config) { c.Backup.Extension = "../x" }, "path separator"},
		{"future version", func(c *Config) { c.Version = 2 }, "unsupported config version 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider.Backend = "x"
	cfg.Backup.Extension = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"provider.backend", "backup.extension"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("missing %q in %v", want, err)
		}
	}
}
