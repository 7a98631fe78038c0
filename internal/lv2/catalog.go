package lv2

import (
	"context"
	"fmt"
	"log/slog"

	"lv2fix/internal/core/errors"
	"lv2fix/internal/data/catalog"
	"lv2fix/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
)

// catalogBackend answers lookups from a sqlite port catalog. Query errors are
// logged and treated as "not found".
type catalogBackend struct {
	store *catalog.Store
}

func openCatalog(path string) (*catalogBackend, error) {
	store, err := catalog.Open(path, false)
	if err != nil {
		return nil, err
	}
	return &catalogBackend{store: store}, nil
}

func (b *catalogBackend) Lookup(uri string) (PluginInfo, bool) {
	n, ok, err := b.store.NumPorts(context.Background(), uri)
	if err != nil {
		slog.Error("catalog lookup failed", "uri", uri, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return catalogPlugin{store: b.store, uri: uri, numPorts: n}, true
}

func (b *catalogBackend) EachPlugin(fn func(uri string, numPorts uint32, ports []Port) error) error {
	plugins, err := b.store.Plugins(context.Background())
	if err != nil {
		return err
	}
	for _, p := range plugins {
		ports := make([]Port, 0, len(p.Ports))
		for _, port := range p.Ports {
			ports = append(ports, Port{Index: port.Index, Symbol: port.Symbol})
		}
		if err := fn(p.URI, p.NumPorts, ports); err != nil {
			return err
		}
	}
	return nil
}

func (b *catalogBackend) Close() error {
	return b.store.Close()
}

type catalogPlugin struct {
	store    *catalog.Store
	uri      string
	numPorts uint32
}

func (p catalogPlugin) NumPorts() uint32 {
	return p.numPorts
}

func (p catalogPlugin) PortIndex(symbol string) (uint32, bool) {
	i, ok, err := p.store.PortIndex(context.Background(), p.uri, symbol)
	if err != nil {
		slog.Error("catalog port lookup failed", "uri", p.uri, "symbol", symbol, "error", err)
		return 0, false
	}
	return i, ok
}

// ExportCatalog writes every plugin of world into a catalog at path,
// replacing its previous content. It returns the number of plugins written.
// A plugin with a port index at or past its port count is rejected.
func ExportCatalog(ctx context.Context, world *World, path string) (int, error) {
	ctx, span := observability.Tracer.Start(ctx, "lv2.ExportCatalog")
	defer span.End()

	var plugins []catalog.Plugin
	err := world.Enumerate(func(uri string, numPorts uint32, ports []Port) error {
		p := catalog.Plugin{URI: uri, NumPorts: numPorts, Ports: make([]catalog.Port, 0, len(ports))}
		for _, port := range ports {
			if port.Index >= numPorts {
				return errors.AddContext(
					errors.New(errors.CodeValidationError,
						fmt.Sprintf("port %q has index %d but the plugin has %d ports", port.Symbol, port.Index, numPorts)),
					errors.CtxURI, uri,
				)
			}
			p.Ports = append(p.Ports, catalog.Port{Index: port.Index, Symbol: port.Symbol})
		}
		plugins = append(plugins, p)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	store, err := catalog.Open(path, true)
	if err != nil {
		return 0, err
	}
	defer store.Close()
	if err := store.Replace(ctx, plugins); err != nil {
		return 0, err
	}
	observability.CatalogPluginsTotal.Add(float64(len(plugins)))
	span.SetAttributes(attribute.Int("plugins", len(plugins)))
	return len(plugins), nil
}
