package config

import (
	"path/filepath"
	"strings"
)

// resolvePaths makes file paths read from the config file relative to the
// directory holding it. It runs before env overrides, whose paths stay
// relative to the working directory.
func resolvePaths(cfg *Config, base string) {
	if strings.TrimSpace(cfg.Provider.CatalogPath) != "" {
		cfg.Provider.CatalogPath = ResolveRelative(base, cfg.Provider.CatalogPath)
	}
	if strings.TrimSpace(cfg.Observability.MetricsFile) != "" {
		cfg.Observability.MetricsFile = ResolveRelative(base, cfg.Observability.MetricsFile)
	}
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
