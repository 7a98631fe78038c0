// Package patch rewrites stale parameter indices in a session. Only the
// digits of indices that resolve to a different value are touched; every
// other byte of the input is reproduced as is.
package patch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lv2fix/internal/engine/diag"
	"lv2fix/internal/engine/document"
	"lv2fix/internal/engine/resolver"
	"lv2fix/internal/engine/session"
	"lv2fix/internal/lv2"
	"lv2fix/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PluginFinder is the part of lv2.World the patcher needs.
type PluginFinder interface {
	Plugin(uri string) (*lv2.Plugin, bool)
}

type Options struct {
	// WarnOverlappingEdits reports edits dropped by the renderer.
	WarnOverlappingEdits bool
	Filter               *URIFilter
	// Diagnostics collects recoverable problems. A fresh bag is used when nil.
	Diagnostics *diag.Bag
}

// Stats summarizes one run.
type Stats struct {
	Processors int
	Skipped    int
	Filtered   int
	Parameters int
	Edits      int
	Fallbacks  int
	Dropped    int
	// ProviderQueries counts plugin metadata lookups; repeated keys are
	// answered from the run's port map.
	ProviderQueries int
}

func (s Stats) LogAttrs() []any {
	return []any{
		"processors", s.Processors,
		"skipped", s.Skipped,
		"filtered", s.Filtered,
		"parameters", s.Parameters,
		"edits", s.Edits,
		"fallbacks", s.Fallbacks,
		"dropped", s.Dropped,
		"queries", s.ProviderQueries,
	}
}

type Result struct {
	Output      *Output
	Diagnostics []diag.Diagnostic
	Stats       Stats
}

// Patch parses text, resolves every known parameter of every LV2 processor
// by symbol and returns the rendered output. Only a parse failure is an
// error; everything else becomes a diagnostic and leaves the text alone.
func Patch(ctx context.Context, text string, plugins PluginFinder, opts Options) (*Result, error) {
	ctx, span := observability.Tracer.Start(ctx, "patch.Patch")
	defer span.End()
	started := time.Now()
	defer func() { observability.PatchDuration.Observe(time.Since(started).Seconds()) }()

	bag := opts.Diagnostics
	if bag == nil {
		bag = diag.NewBag()
	}

	doc, err := document.Parse(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}
	bag.SetLocator(doc.Position)

	var (
		stats Stats
		edits []Edit
		ports = resolver.NewPortMap(bag)
	)
	for _, proc := range session.Extract(ctx, doc, bag) {
		stats.Processors++
		if !opts.Filter.Allows(proc.URI) {
			slog.Debug("processor filtered", "uri", proc.URI, "offset", proc.Offset)
			stats.Filtered++
			observability.ProcessorsTotal.WithLabelValues("filtered").Inc()
			continue
		}
		plugin, ok := plugins.Plugin(proc.URI)
		if !ok {
			bag.Report(diag.Diagnostic{
				Kind:    diag.KindPluginNotFound,
				Message: fmt.Sprintf("could not find plugin: %s", proc.URI),
				Offset:  proc.Offset,
				URI:     proc.URI,
			})
			stats.Skipped++
			observability.ProcessorsTotal.WithLabelValues("skipped").Inc()
			continue
		}
		observability.ProcessorsTotal.WithLabelValues("resolved").Inc()

		for _, param := range proc.Parameters() {
			stats.Parameters++
			idx := ports.Index(plugin, resolver.PortKey{URI: proc.URI, Symbol: param.Symbol})
			if idx == param.OldIndex {
				continue
			}
			slog.Debug("reindex", "uri", proc.URI, "symbol", param.Symbol,
				"offset", param.Location.Start, "from", param.OldIndex, "to", idx)
			edits = append(edits, Edit{Location: param.Location, Value: idx})
		}
	}

	out, dropped := NewOutput(text, edits, bag, opts.WarnOverlappingEdits)
	stats.Edits = len(out.edits)
	stats.Fallbacks = ports.Fallbacks()
	stats.ProviderQueries = ports.Lookups()
	stats.Dropped = dropped

	observability.ParametersTotal.Add(float64(stats.Parameters))
	observability.EditsTotal.Add(float64(stats.Edits))
	observability.FallbacksTotal.Add(float64(stats.Fallbacks))
	observability.DroppedEditsTotal.Add(float64(stats.Dropped))
	span.SetAttributes(
		attribute.Int("processors", stats.Processors),
		attribute.Int("edits", stats.Edits),
		attribute.Int("provider_queries", stats.ProviderQueries),
		attribute.Int("diagnostics", bag.Len()),
	)

	return &Result{Output: out, Diagnostics: bag.Items(), Stats: stats}, nil
}
