package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"lv2fix/internal/shared/util"

	"github.com/gobwas/glob"
)

// Validate reports every problem in cfg, joined into one error.
func Validate(cfg *Config) error {
	var errs []error
	for _, check := range []func(*Config) error{
		validateVersion,
		validateProvider,
		validateFilter,
		validateBackup,
	} {
		if err := check(cfg); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateProvider(cfg *Config) error {
	switch cfg.Provider.Backend {
	case BackendLilv:
		return nil
	case BackendCatalog:
		if cfg.Provider.CatalogPath == "" {
			return fmt.Errorf("provider.catalog_path must be set when provider.backend is %q", BackendCatalog)
		}
		return nil
	default:
		return fmt.Errorf("provider.backend must be one of: %s, %s; got %q", BackendLilv, BackendCatalog, cfg.Provider.Backend)
	}
}

func validateFilter(cfg *Config) error {
	for i, p := range cfg.Filter.Include {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("filter.include[%d] %q: %w", i, p, err)
		}
	}
	for i, p := range cfg.Filter.Exclude {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("filter.exclude[%d] %q: %w", i, p, err)
		}
	}
	return nil
}

func validateBackup(cfg *Config) error {
	ext := cfg.Backup.Extension
	if ext == "" {
		return fmt.Errorf("backup.extension must not be empty")
	}
	if util.ContainsPathSeparator(ext) || strings.ContainsRune(ext, 0) {
		return fmt.Errorf("backup.extension %q must not contain a path separator", ext)
	}
	return nil
}
