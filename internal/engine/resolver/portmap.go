// Package resolver maps port symbols to current port indices.
package resolver

import (
	"fmt"

	"lv2fix/internal/engine/diag"
)

// PortKey identifies a port by plugin URI and symbol.
type PortKey struct {
	URI    string
	Symbol string
}

// PortSource is the metadata of one plugin.
type PortSource interface {
	NumPorts() uint32
	PortIndex(symbol string) (uint32, bool)
}

// PortMap resolves and memoizes port indices for one patch run. Once a key
// has an index, whether found or assigned as a fallback, every later lookup
// of that key returns the same index.
type PortMap struct {
	index    map[PortKey]uint32
	next     map[string]uint32
	reporter diag.Reporter

	lookups   int
	fallbacks int
}

func NewPortMap(reporter diag.Reporter) *PortMap {
	return &PortMap{
		index:    make(map[PortKey]uint32),
		next:     make(map[string]uint32),
		reporter: diag.Or(reporter),
	}
}

// Index returns the index of key.Symbol in plugin. A symbol the plugin does
// not have gets the next fallback index for key.URI: fallbacks start at the
// plugin's port count and increase by one per distinct symbol, so they never
// collide with a real port or with each other.
func (m *PortMap) Index(plugin PortSource, key PortKey) uint32 {
	if i, ok := m.index[key]; ok {
		return i
	}
	m.lookups++
	if i, ok := plugin.PortIndex(key.Symbol); ok {
		m.index[key] = i
		return i
	}

	m.reporter.Report(diag.Diagnostic{
		Kind:    diag.KindPortNotFound,
		Message: fmt.Sprintf("could not find port %q in %s", key.Symbol, key.URI),
		Offset:  diag.NoOffset,
		URI:     key.URI,
		Symbol:  key.Symbol,
	})
	next, ok := m.next[key.URI]
	if !ok {
		next = plugin.NumPorts()
	}
	m.next[key.URI] = next + 1
	m.index[key] = next
	m.fallbacks++
	return next
}

// Lookups is the number of provider queries made, i.e. cache misses.
func (m *PortMap) Lookups() int {
	return m.lookups
}

// Fallbacks is the number of fallback indices assigned.
func (m *PortMap) Fallbacks() int {
	return m.fallbacks
}
