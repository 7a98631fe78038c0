package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	PatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lv2fix_patch_seconds",
		Help:    "Time spent extracting, resolving and collecting edits for one session.",
		Buckets: prometheus.DefBuckets,
	})

	ProcessorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lv2fix_processors_total",
		Help: "LV2 processors seen, by outcome (resolved, skipped, filtered).",
	}, []string{"outcome"})

	ParametersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lv2fix_parameters_total",
		Help: "Parameter occurrences resolved by symbol.",
	})

	EditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lv2fix_edits_total",
		Help: "Parameter indices rewritten in the output.",
	})

	FallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lv2fix_fallback_indices_total",
		Help: "Fallback indices assigned to symbols the plugin does not expose.",
	})

	DroppedEditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lv2fix_dropped_edits_total",
		Help: "Edits dropped because they overlapped an earlier edit.",
	})

	DiagnosticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lv2fix_diagnostics_total",
		Help: "Recoverable problems reported during a run, by kind.",
	}, []string{"kind"})

	CatalogPluginsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lv2fix_catalog_plugins_total",
		Help: "Plugins written to a port catalog by export.",
	})
)

// WriteTextfile writes the default registry in the node_exporter textfile
// collector format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
