package document

import (
	"encoding/xml"
	"fmt"

	"lv2fix/internal/core/errors"
)

// newElement builds a node for the start tag text[start:end]. The decoder has
// already validated the tag; this pass only recovers attribute value offsets,
// which encoding/xml does not expose.
func newElement(text string, start, end int, t xml.StartElement) (*Node, error) {
	raw := text[start:end]
	s := tagScanner{src: raw, pos: 1}

	name := s.name()
	if name == "" {
		return nil, scanError(start, "missing element name")
	}
	node := &Node{Name: name, Start: start, End: end}
	if len(t.Attr) > 0 {
		node.Attrs = make([]Attr, 0, len(t.Attr))
	}

	for {
		s.skipSpace()
		if s.done() {
			break
		}
		c := s.src[s.pos]
		if c == '/' || c == '>' {
			break
		}
		attrName := s.name()
		if attrName == "" {
			return nil, scanError(start+s.pos, "malformed attribute")
		}
		s.skipSpace()
		if !s.consume('=') {
			return nil, scanError(start+s.pos, fmt.Sprintf("attribute %q has no value", attrName))
		}
		s.skipSpace()
		valueStart, valueEnd, ok := s.quoted()
		if !ok {
			return nil, scanError(start+s.pos, fmt.Sprintf("attribute %q value is not quoted", attrName))
		}
		i := len(node.Attrs)
		if i >= len(t.Attr) {
			return nil, scanError(start, "attribute count mismatch")
		}
		node.Attrs = append(node.Attrs, Attr{
			Name:       attrName,
			Value:      t.Attr[i].Value,
			Raw:        raw[valueStart:valueEnd],
			ValueRange: Range{Start: start + valueStart, End: start + valueEnd},
		})
	}
	if len(node.Attrs) != len(t.Attr) {
		return nil, scanError(start, "attribute count mismatch")
	}
	return node, nil
}

func scanError(offset int, msg string) error {
	return errors.AddContext(
		errors.New(errors.CodeValidationError, "could not parse session file: "+msg),
		errors.CtxOffset, offset,
	)
}

type tagScanner struct {
	src string
	pos int
}

func (s *tagScanner) done() bool {
	return s.pos >= len(s.src)
}

func (s *tagScanner) skipSpace() {
	for !s.done() && isSpace(s.src[s.pos]) {
		s.pos++
	}
}

func (s *tagScanner) consume(c byte) bool {
	if !s.done() && s.src[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

func (s *tagScanner) name() string {
	begin := s.pos
	for !s.done() {
		c := s.src[s.pos]
		if isSpace(c) || c == '=' || c == '/' || c == '>' {
			break
		}
		s.pos++
	}
	return s.src[begin:s.pos]
}

// quoted consumes a quoted value and returns the bounds of its contents.
func (s *tagScanner) quoted() (int, int, bool) {
	if s.done() {
		return 0, 0, false
	}
	q := s.src[s.pos]
	if q != '"' && q != '\'' {
		return 0, 0, false
	}
	begin := s.pos + 1
	for i := begin; i < len(s.src); i++ {
		if s.src[i] == q {
			s.pos = i + 1
			return begin, i, true
		}
	}
	return 0, 0, false
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
