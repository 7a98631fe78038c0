package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: LV2FIX_[SECTION]_[KEY] (e.g., LV2FIX_PROVIDER_BACKEND).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Provider.Backend, "LV2FIX_PROVIDER_BACKEND")
	setEnvString(&cfg.Provider.CatalogPath, "LV2FIX_PROVIDER_CATALOG_PATH")
	setEnvString(&cfg.Provider.LV2Path, "LV2FIX_PROVIDER_LV2_PATH")

	setEnvBoolPtr(&cfg.Diagnostics.WarnOverlappingEdits, "LV2FIX_DIAGNOSTICS_WARN_OVERLAPPING_EDITS")
	setEnvString(&cfg.Backup.Extension, "LV2FIX_BACKUP_EXTENSION")

	setEnvString(&cfg.Observability.MetricsFile, "LV2FIX_OBSERVABILITY_METRICS_FILE")
	setEnvString(&cfg.Observability.OTLPEndpoint, "LV2FIX_OBSERVABILITY_OTLP_ENDPOINT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err != nil {
			slog.Warn("ignoring env override", "key", key, "value", val, "error", err)
			return
		}
		slog.Debug("applying env override", "key", key, "value", val)
		*target = &b
	}
}
