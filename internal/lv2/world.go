// Package lv2 looks up LV2 plugin port metadata.
//
// A World owns one metadata backend and releases it exactly once on Close.
// Plugin values are borrowed from their World: they are never closed on
// their own and stop answering once the World is closed.
package lv2

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"lv2fix/internal/engine/diag"
)

// Port is one port of a plugin.
type Port struct {
	Index  uint32
	Symbol string
}

// PluginInfo is a backend's view of one plugin.
type PluginInfo interface {
	NumPorts() uint32
	PortIndex(symbol string) (uint32, bool)
}

// Backend is a source of plugin metadata.
type Backend interface {
	Lookup(uri string) (PluginInfo, bool)
	Close() error
}

// Enumerator is implemented by backends that can list every plugin they know,
// for export into a catalog.
type Enumerator interface {
	EachPlugin(fn func(uri string, numPorts uint32, ports []Port) error) error
}

// World is the owning handle for a metadata backend.
type World struct {
	backend  Backend
	reporter diag.Reporter

	closeOnce sync.Once
	closed    bool
	closeErr  error
}

// NewWorld takes ownership of backend. Diagnostics about rejected names go to
// reporter, or only to the log when reporter is nil.
func NewWorld(backend Backend, reporter diag.Reporter) *World {
	return &World{backend: backend, reporter: diag.Or(reporter)}
}

// Plugin finds a plugin by URI. URIs containing NUL are rejected.
func (w *World) Plugin(uri string) (*Plugin, bool) {
	if w.closed {
		slog.Debug("plugin lookup on closed world", "uri", uri)
		return nil, false
	}
	if !w.validName("uri", uri) {
		return nil, false
	}
	info, ok := w.backend.Lookup(uri)
	if !ok {
		return nil, false
	}
	return &Plugin{world: w, uri: uri, info: info}, true
}

// Enumerate lists every plugin, when the backend supports it.
func (w *World) Enumerate(fn func(uri string, numPorts uint32, ports []Port) error) error {
	if w.closed {
		return fmt.Errorf("world is closed")
	}
	e, ok := w.backend.(Enumerator)
	if !ok {
		return fmt.Errorf("backend %T cannot enumerate plugins", w.backend)
	}
	return e.EachPlugin(fn)
}

// Close releases the backend. Later calls return the first result.
func (w *World) Close() error {
	w.closeOnce.Do(func() {
		w.closed = true
		w.closeErr = w.backend.Close()
	})
	return w.closeErr
}

func (w *World) validName(kind, s string) bool {
	if !strings.ContainsRune(s, 0) {
		return true
	}
	quoted := strconv.Quote(s)
	d := diag.Diagnostic{
		Kind:    diag.KindInvalidName,
		Message: fmt.Sprintf("\\0 in %s: %s", kind, quoted),
		Offset:  diag.NoOffset,
	}
	if kind == "uri" {
		d.URI = quoted
	} else {
		d.Symbol = quoted
	}
	w.reporter.Report(d)
	return false
}

// Plugin is a borrowed handle to one plugin of a World.
type Plugin struct {
	world *World
	uri   string
	info  PluginInfo
}

func (p *Plugin) URI() string {
	return p.uri
}

// NumPorts returns the total number of ports, or 0 once the world is closed.
func (p *Plugin) NumPorts() uint32 {
	if p.world.closed {
		return 0
	}
	return p.info.NumPorts()
}

// PortIndex returns the index of the port with the given symbol. Symbols
// containing NUL are rejected.
func (p *Plugin) PortIndex(symbol string) (uint32, bool) {
	if p.world.closed {
		return 0, false
	}
	if !p.world.validName("symbol", symbol) {
		return 0, false
	}
	return p.info.PortIndex(symbol)
}
