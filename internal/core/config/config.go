package config

const (
	DefaultPath            = "lv2fix.toml"
	DefaultBackupExtension = "orig"

	BackendLilv    = "lilv"
	BackendCatalog = "catalog"
)

type Config struct {
	Version       int           `toml:"version"`
	Provider      Provider      `toml:"provider"`
	Filter        Filter        `toml:"filter"`
	Diagnostics   Diagnostics   `toml:"diagnostics"`
	Backup        Backup        `toml:"backup"`
	Observability Observability `toml:"observability"`
}

// Provider selects where plugin port metadata comes from.
type Provider struct {
	Backend     string `toml:"backend"`
	CatalogPath string `toml:"catalog_path"`
	LV2Path     string `toml:"lv2_path"`
}

// Filter limits patching to processors whose plugin URI matches. Patterns
// use glob syntax; exclude wins over include.
type Filter struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type Diagnostics struct {
	WarnOverlappingEdits *bool `toml:"warn_overlapping_edits"`
}

type Backup struct {
	Extension string `toml:"extension"`
}

type Observability struct {
	MetricsFile  string `toml:"metrics_file"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
}

// WarnOverlaps reports whether dropped overlapping edits are reported.
func (d Diagnostics) WarnOverlaps() bool {
	return d.WarnOverlappingEdits == nil || *d.WarnOverlappingEdits
}

// DefaultConfig is the configuration used when no file exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
