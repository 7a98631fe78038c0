// Package diag collects the recoverable problems found during a patch run.
// Each one leaves the affected text unchanged; none of them abort the run.
package diag

import (
	"log/slog"

	"lv2fix/internal/shared/observability"
)

type Kind string

const (
	KindMissingURI      Kind = "missing-uri"
	KindPluginNotFound  Kind = "plugin-not-found"
	KindBadIndex        Kind = "bad-index"
	KindMissingSymbol   Kind = "missing-symbol"
	KindPortNotFound    Kind = "port-not-found"
	KindInvalidName     Kind = "invalid-name"
	KindOverlappingEdit Kind = "overlapping-edit"
)

// NoOffset marks a diagnostic that is not tied to a document position.
const NoOffset = -1

type Diagnostic struct {
	Kind    Kind
	Message string
	Offset  int
	// Line and Col are 1-based; zero when unknown.
	Line   int
	Col    int
	URI    string
	Symbol string
	Value  string
}

func (d Diagnostic) attrs() []any {
	attrs := []any{"kind", string(d.Kind)}
	if d.Offset != NoOffset {
		attrs = append(attrs, "offset", d.Offset)
		if d.Line > 0 {
			attrs = append(attrs, "line", d.Line, "col", d.Col)
		}
	}
	if d.URI != "" {
		attrs = append(attrs, "uri", d.URI)
	}
	if d.Symbol != "" {
		attrs = append(attrs, "symbol", d.Symbol)
	}
	if d.Value != "" {
		attrs = append(attrs, "value", d.Value)
	}
	return attrs
}

// Reporter receives diagnostics from the extraction, resolution and render
// phases.
type Reporter interface {
	Report(d Diagnostic)
}

// LogReporter only logs.
type LogReporter struct{}

func (LogReporter) Report(d Diagnostic) {
	slog.Warn(d.Message, d.attrs()...)
}

// Bag logs every diagnostic and keeps it for the run summary.
type Bag struct {
	items  []Diagnostic
	counts map[Kind]int
	locate func(offset int) (line, col int)
}

func NewBag() *Bag {
	return &Bag{counts: make(map[Kind]int)}
}

// SetLocator fills Line and Col of later diagnostics that carry an offset.
func (b *Bag) SetLocator(locate func(offset int) (line, col int)) {
	b.locate = locate
}

func (b *Bag) Report(d Diagnostic) {
	if b.locate != nil && d.Offset != NoOffset && d.Line == 0 {
		d.Line, d.Col = b.locate(d.Offset)
	}
	slog.Warn(d.Message, d.attrs()...)
	observability.DiagnosticsTotal.WithLabelValues(string(d.Kind)).Inc()
	b.items = append(b.items, d)
	b.counts[d.Kind]++
}

// Items returns the diagnostics in the order they were reported. The slice
// is shared with the bag.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

func (b *Bag) Len() int {
	return len(b.items)
}

func (b *Bag) Count(kind Kind) int {
	return b.counts[kind]
}

// Or returns r, or a LogReporter when r is nil.
func Or(r Reporter) Reporter {
	if r == nil {
		return LogReporter{}
	}
	return r
}
