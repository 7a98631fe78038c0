package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"lv2fix/internal/core/errors"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeInternal
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "could not read config"), errors.CtxPath, path)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "could not parse config"), errors.CtxPath, path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, errors.AddContext(
			errors.New(errors.CodeValidationError, "unknown config keys: "+strings.Join(keys, ", ")),
			errors.CtxPath, path,
		)
	}

	applyDefaults(&cfg)
	resolvePaths(&cfg, filepath.Dir(path))
	ApplyEnvOverrides(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "invalid config"), errors.CtxPath, path)
	}
	return &cfg, nil
}

// Resolve loads path. When explicit is false, a missing file is not an error
// and the defaults are returned instead.
func Resolve(path string, explicit bool) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		path = DefaultPath
	}
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if explicit || !errors.IsCode(err, errors.CodeNotFound) {
		return nil, err
	}

	cfg = DefaultConfig()
	ApplyEnvOverrides(cfg)
	normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid config")
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Provider.Backend) == "" {
		cfg.Provider.Backend = BackendLilv
	}
	if cfg.Diagnostics.WarnOverlappingEdits == nil {
		enabled := true
		cfg.Diagnostics.WarnOverlappingEdits = &enabled
	}
	if cfg.Backup.Extension == "" {
		cfg.Backup.Extension = DefaultBackupExtension
	}
}

func normalize(cfg *Config) {
	cfg.Provider.Backend = strings.ToLower(strings.TrimSpace(cfg.Provider.Backend))
	cfg.Provider.CatalogPath = strings.TrimSpace(cfg.Provider.CatalogPath)
	cfg.Provider.LV2Path = strings.TrimSpace(cfg.Provider.LV2Path)
	cfg.Backup.Extension = strings.TrimPrefix(strings.TrimSpace(cfg.Backup.Extension), ".")
	cfg.Observability.MetricsFile = strings.TrimSpace(cfg.Observability.MetricsFile)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}
