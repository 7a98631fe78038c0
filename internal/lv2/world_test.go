package lv2

import (
	"context"
	"path/filepath"
	"testing"

	"lv2fix/internal/core/errors"
	"lv2fix/internal/engine/diag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eq = StaticPlugin{
	URI: "urn:test:eq",
	Ports: []Port{
		{Index: 0, Symbol: "in"},
		{Index: 1, Symbol: "out"},
		{Index: 2, Symbol: "gain"},
	},
	PortCount: 5,
}

type countingBackend struct {
	*StaticBackend
	closes int
}

func (b *countingBackend) Close() error {
	b.closes++
	return nil
}

func TestWorldLookup(t *testing.T) {
	w := NewWorld(NewStaticBackend(eq), diag.NewBag())
	defer w.Close()

	p, ok := w.Plugin("urn:test:eq")
	require.True(t, ok)
	assert.Equal(t, "urn:test:eq", p.URI())
	assert.EqualValues(t, 5, p.NumPorts())

	i, ok := p.PortIndex("gain")
	assert.True(t, ok)
	assert.EqualValues(t, 2, i)

	_, ok = p.PortIndex("missing")
	assert.False(t, ok)

	_, ok = w.Plugin("urn:test:none")
	assert.False(t, ok)
}

func TestWorldRejectsNUL(t *testing.T) {
	bag := diag.NewBag()
	w := NewWorld(NewStaticBackend(eq, StaticPlugin{URI: "urn:\x00bad"}), bag)
	defer w.Close()

	_, ok := w.Plugin("urn:\x00bad")
	assert.False(t, ok, "uri with NUL must not reach the backend")

	p, ok := w.Plugin("urn:test:eq")
	require.True(t, ok)
	_, ok = p.PortIndex("ga\x00in")
	assert.False(t, ok)

	require.Equal(t, 2, bag.Count(diag.KindInvalidName))
	assert.Equal(t, `"urn:\x00bad"`, bag.Items()[0].URI)
	assert.Equal(t, `"ga\x00in"`, bag.Items()[1].Symbol)
}

func TestWorldCloseReleasesOnce(t *testing.T) {
	backend := &countingBackend{StaticBackend: NewStaticBackend(eq)}
	w := NewWorld(backend, nil)

	p, ok := w.Plugin("urn:test:eq")
	require.True(t, ok)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, 1, backend.closes)

	_, ok = w.Plugin("urn:test:eq")
	assert.False(t, ok)
	_, ok = p.PortIndex("gain")
	assert.False(t, ok, "borrowed plugin is invalid after close")
	assert.Zero(t, p.NumPorts())
	assert.Error(t, w.Enumerate(func(string, uint32, []Port) error { return nil }))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "ladspa"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestOpenLilvWithoutSupport(t *testing.T) {
	if lilvAvailable {
		t.Skip("built with lilv")
	}
	_, err := Open(context.Background(), Options{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestOpenMissingCatalog(t *testing.T) {
	_, err := Open(context.Background(), Options{
		Backend:     BackendCatalog,
		CatalogPath: filepath.Join(t.TempDir(), "absent.db"),
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound), "got %v", err)
}

func TestExportCatalogRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ports.db")

	source := NewWorld(NewStaticBackend(eq, StaticPlugin{URI: "urn:test:empty"}), nil)
	n, err := ExportCatalog(ctx, source, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, source.Close())

	w, err := Open(ctx, Options{Backend: BackendCatalog, CatalogPath: path})
	require.NoError(t, err)
	defer w.Close()

	p, ok := w.Plugin("urn:test:eq")
	require.True(t, ok)
	assert.EqualValues(t, 5, p.NumPorts())
	i, ok := p.PortIndex("out")
	assert.True(t, ok)
	assert.EqualValues(t, 1, i)

	empty, ok := w.Plugin("urn:test:empty")
	require.True(t, ok)
	assert.Zero(t, empty.NumPorts())

	var uris []string
	require.NoError(t, w.Enumerate(func(uri string, _ uint32, _ []Port) error {
		uris = append(uris, uri)
		return nil
	}))
	assert.Equal(t, []string{"urn:test:empty", "urn:test:eq"}, uris)
}

func TestExportCatalogRejectsPortPastCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ports.db")
	bad := StaticPlugin{URI: "urn:test:bad", Ports: []Port{{Index: 3, Symbol: "gain"}}, PortCount: 2}

	source := NewWorld(NewStaticBackend(eq, bad), nil)
	defer source.Close()
	_, err := ExportCatalog(context.Background(), source, path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeValidationError), "got %v", err)

	var de *errors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "urn:test:bad", de.Context[errors.CtxURI])
	assert.NoFileExists(t, path)
}
