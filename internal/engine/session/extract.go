// Package session finds LV2 processors in an Ardour session and the byte
// locations of their parameter indices.
package session

import (
	"context"

	"lv2fix/internal/engine/diag"
	"lv2fix/internal/engine/document"
	"lv2fix/internal/shared/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Extract returns the LV2 processors of doc in document order. The walk never
// enters a Processor element, so a processor nested inside another one is
// not found.
func Extract(ctx context.Context, doc *document.Document, reporter diag.Reporter) []*Processor {
	_, span := observability.Tracer.Start(ctx, "session.Extract")
	defer span.End()

	var processors []*Processor
	document.NewWalker(map[string]document.NodeHandler{
		ProcessorTag: func(node *document.Node) bool {
			if p, ok := ParseProcessor(node, reporter); ok {
				processors = append(processors, p)
			}
			return true
		},
	}).Walk(doc.Root())

	span.SetAttributes(attribute.Int("processors", len(processors)))
	span.AddEvent("extracted", trace.WithAttributes(attribute.Int("bytes", len(doc.Text()))))
	return processors
}
