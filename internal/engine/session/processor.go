package session

import (
	"fmt"
	"strings"

	"lv2fix/internal/engine/diag"
	"lv2fix/internal/engine/document"
)

const (
	ProcessorTag      = "Processor"
	AutomationListTag = "AutomationList"
	ControllableTag   = "Controllable"

	pluginType      = "lv2"
	parameterPrefix = "parameter-"
)

// Parameter is one occurrence of a port index whose symbol is known.
type Parameter struct {
	Symbol   string
	Location document.Range
	OldIndex uint32
}

type occurrence struct {
	index    ParameterIndex
	location document.Range
}

// Processor is an LV2 plugin instance in the session along with every place
// its parameter indices are written.
type Processor struct {
	URI    string
	Offset int

	symbols     map[ParameterIndex]string
	occurrences []occurrence
	reporter    diag.Reporter
}

// Parameters returns, in document order, every occurrence whose index was
// bound to a symbol by some Controllable in the same processor. Occurrences
// with no known symbol cannot be resolved and are left out.
func (p *Processor) Parameters() []Parameter {
	out := make([]Parameter, 0, len(p.occurrences))
	for _, occ := range p.occurrences {
		symbol, ok := p.symbols[occ.index]
		if !ok {
			continue
		}
		out = append(out, Parameter{
			Symbol:   symbol,
			Location: occ.location,
			OldIndex: uint32(occ.index),
		})
	}
	return out
}

// Occurrences is the number of index occurrences found, with or without a
// symbol.
func (p *Processor) Occurrences() int {
	return len(p.occurrences)
}

// ParseProcessor reads a Processor element. It reports false for processors
// that are not LV2 plugins, and for LV2 processors without a unique-id.
func ParseProcessor(node *document.Node, reporter diag.Reporter) (*Processor, bool) {
	reporter = diag.Or(reporter)
	if t, _ := node.AttrValue("type"); t != pluginType {
		return nil, false
	}
	uri, ok := node.AttrValue("unique-id")
	if !ok {
		reporter.Report(diag.Diagnostic{
			Kind:    diag.KindMissingURI,
			Message: fmt.Sprintf("missing uri for processor at %d", node.Start),
			Offset:  node.Start,
		})
		return nil, false
	}

	p := &Processor{
		URI:      uri,
		Offset:   node.Start,
		symbols:  make(map[ParameterIndex]string),
		reporter: reporter,
	}
	document.NewWalker(map[string]document.NodeHandler{
		AutomationListTag: p.onAutomationList,
		ControllableTag:   p.onControllable,
	}).WalkDescendants(node)
	return p, true
}

func (p *Processor) onAutomationList(node *document.Node) bool {
	attr, ok := node.Attr("automation-id")
	if !ok || !strings.HasPrefix(attr.Value, parameterPrefix) {
		return true
	}
	raw := strings.TrimPrefix(attr.Raw, parameterPrefix)
	index, ok := p.parseIndex(raw, attr.ValueRange.End-len(raw))
	if !ok {
		return true
	}
	p.occurrences = append(p.occurrences, occurrence{
		index:    index,
		location: document.Range{Start: attr.ValueRange.End - len(raw), End: attr.ValueRange.End},
	})
	return true
}

func (p *Processor) onControllable(node *document.Node) bool {
	attr, ok := node.Attr("parameter")
	if !ok {
		return true
	}
	index, ok := p.parseIndex(attr.Raw, attr.ValueRange.Start)
	if !ok {
		return true
	}
	symbol, ok := node.AttrValue("symbol")
	if !ok {
		p.reporter.Report(diag.Diagnostic{
			Kind:    diag.KindMissingSymbol,
			Message: fmt.Sprintf("missing symbol in controllable at %d", node.Start),
			Offset:  node.Start,
			URI:     p.URI,
		})
		return true
	}
	p.symbols[index] = symbol
	p.occurrences = append(p.occurrences, occurrence{index: index, location: attr.ValueRange})
	return true
}

func (p *Processor) parseIndex(raw string, offset int) (ParameterIndex, bool) {
	index, err := ParseParameterIndex(raw)
	if err != nil {
		p.reporter.Report(diag.Diagnostic{
			Kind:    diag.KindBadIndex,
			Message: "could not parse parameter index: " + raw,
			Offset:  offset,
			URI:     p.URI,
			Value:   raw,
		})
		return 0, false
	}
	return index, true
}
