package lv2

import "sort"

// StaticPlugin describes a plugin held in memory. PortCount defaults to the
// number of Ports; set it when some ports have no entry.
type StaticPlugin struct {
	URI       string
	Ports     []Port
	PortCount uint32
}

func (p StaticPlugin) NumPorts() uint32 {
	if p.PortCount != 0 {
		return p.PortCount
	}
	return uint32(len(p.Ports))
}

// PortIndex returns the first port with symbol.
func (p StaticPlugin) PortIndex(symbol string) (uint32, bool) {
	for _, port := range p.Ports {
		if port.Symbol == symbol {
			return port.Index, true
		}
	}
	return 0, false
}

// StaticBackend serves a fixed set of plugins.
type StaticBackend struct {
	plugins map[string]StaticPlugin
}

func NewStaticBackend(plugins ...StaticPlugin) *StaticBackend {
	b := &StaticBackend{plugins: make(map[string]StaticPlugin, len(plugins))}
	for _, p := range plugins {
		b.plugins[p.URI] = p
	}
	return b
}

func (b *StaticBackend) Lookup(uri string) (PluginInfo, bool) {
	p, ok := b.plugins[uri]
	if !ok {
		return nil, false
	}
	return p, true
}

// EachPlugin visits plugins ordered by URI.
func (b *StaticBackend) EachPlugin(fn func(uri string, numPorts uint32, ports []Port) error) error {
	uris := make([]string, 0, len(b.plugins))
	for uri := range b.plugins {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		p := b.plugins[uri]
		if err := fn(uri, p.NumPorts(), append([]Port(nil), p.Ports...)); err != nil {
			return err
		}
	}
	return nil
}

func (b *StaticBackend) Close() error {
	return nil
}
