package resolver

import (
	"testing"

	"lv2fix/internal/engine/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlugin struct {
	ports      map[string]uint32
	numPorts   uint32
	queries    int
	countCalls int
}

func (p *fakePlugin) NumPorts() uint32 {
	p.countCalls++
	return p.numPorts
}

func (p *fakePlugin) PortIndex(symbol string) (uint32, bool) {
	p.queries++
	i, ok := p.ports[symbol]
	return i, ok
}

func TestIndexFoundIsCached(t *testing.T) {
	plugin := &fakePlugin{ports: map[string]uint32{"gain": 5}, numPorts: 8}
	m := NewPortMap(diag.NewBag())

	key := PortKey{URI: "urn:x", Symbol: "gain"}
	assert.EqualValues(t, 5, m.Index(plugin, key))
	assert.EqualValues(t, 5, m.Index(plugin, key))
	assert.Equal(t, 1, plugin.queries)
	assert.Equal(t, 1, m.Lookups())
	assert.Zero(t, m.Fallbacks())
}

func TestIndexFallbacksAreDistinctAndAboveRealPorts(t *testing.T) {
	plugin := &fakePlugin{ports: map[string]uint32{"gain": 0}, numPorts: 8}
	bag := diag.NewBag()
	m := NewPortMap(bag)

	a := m.Index(plugin, PortKey{URI: "urn:x", Symbol: "gone"})
	b := m.Index(plugin, PortKey{URI: "urn:x", Symbol: "also-gone"})
	again := m.Index(plugin, PortKey{URI: "urn:x", Symbol: "gone"})

	assert.EqualValues(t, 8, a)
	assert.EqualValues(t, 9, b)
	assert.Equal(t, a, again)
	assert.Equal(t, 1, plugin.countCalls, "port count is read once per uri")
	assert.Equal(t, 2, m.Fallbacks())

	require.Equal(t, 2, bag.Count(diag.KindPortNotFound))
	assert.Equal(t, "gone", bag.Items()[0].Symbol)
	assert.Equal(t, "urn:x", bag.Items()[0].URI)
}

func TestIndexFallbackCountersArePerURI(t *testing.T) {
	x := &fakePlugin{numPorts: 3}
	y := &fakePlugin{numPorts: 10}
	m := NewPortMap(diag.NewBag())

	assert.EqualValues(t, 3, m.Index(x, PortKey{URI: "urn:x", Symbol: "s"}))
	assert.EqualValues(t, 10, m.Index(y, PortKey{URI: "urn:y", Symbol: "s"}))
	assert.EqualValues(t, 4, m.Index(x, PortKey{URI: "urn:x", Symbol: "t"}))
	assert.EqualValues(t, 11, m.Index(y, PortKey{URI: "urn:y", Symbol: "t"}))
}

func TestIndexSameKeyAcrossPluginHandles(t *testing.T) {
	first := &fakePlugin{ports: map[string]uint32{"gain": 2}, numPorts: 4}
	second := &fakePlugin{ports: map[string]uint32{"gain": 2}, numPorts: 4}
	m := NewPortMap(nil)

	key := PortKey{URI: "urn:x", Symbol: "gain"}
	assert.Equal(t, m.Index(first, key), m.Index(second, key))
	assert.Zero(t, second.queries)
}
