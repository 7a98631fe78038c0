// Package document parses session XML into a read-only element tree that
// remembers where every attribute value sits in the original text.
//
// The tree is only used to locate text; output is never produced by
// serializing it back.
package document

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"lv2fix/internal/core/errors"
)

// Range is a half-open [Start, End) byte range into the document text.
type Range struct {
	Start int
	End   int
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Attr is one attribute of an element.
type Attr struct {
	Name       string // qualified name as written
	Value      string // decoded value
	Raw        string // source text between the quotes
	ValueRange Range  // location of Raw in the document text
}

// Node is an element. The synthetic root returned by Document.Root has an
// empty Name and holds the top-level element as its only child.
type Node struct {
	Name     string
	Attrs    []Attr
	Start    int // offset of '<'
	End      int // offset just past the end tag
	Parent   *Node
	Children []*Node
}

// LocalName returns the tag name without its namespace prefix.
func (n *Node) LocalName() string {
	return localName(n.Name)
}

// Attr looks up an attribute by its name as written.
func (n *Node) Attr(name string) (Attr, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

// AttrValue returns the decoded value of an attribute.
func (n *Node) AttrValue(name string) (string, bool) {
	a, ok := n.Attr(name)
	return a.Value, ok
}

// Document is a parsed session file.
type Document struct {
	text  string
	root  *Node
	lines []int // offsets of line starts
}

// Text returns the original input, unmodified.
func (d *Document) Text() string {
	return d.text
}

// Root returns the synthetic document node.
func (d *Document) Root() *Node {
	return d.root
}

// Position converts a byte offset into a 1-based line and column.
func (d *Document) Position(offset int) (line, column int) {
	i := sort.Search(len(d.lines), func(i int) bool { return d.lines[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	return i + 1, offset - d.lines[i] + 1
}

// Parse builds the element tree for text. Malformed XML is reported as a
// CodeValidationError carrying the failing offset.
func Parse(text string) (*Document, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Strict = true

	root := &Node{Start: 0, End: len(text)}
	stack := []*Node{root}
	for {
		start := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(err, start)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			end := int(dec.InputOffset())
			node, err := newElement(text, start, end, t)
			if err != nil {
				return nil, err
			}
			parent := stack[len(stack)-1]
			if parent == root && len(root.Children) > 0 {
				return nil, parseError(fmt.Errorf("unexpected second root element <%s>", node.Name), start)
			}
			node.Parent = parent
			parent.Children = append(parent.Children, node)
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 1 {
				return nil, parseError(fmt.Errorf("unexpected end element </%s>", t.Name.Local), start)
			}
			stack[len(stack)-1].End = int(dec.InputOffset())
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) != 1 {
		return nil, parseError(io.ErrUnexpectedEOF, len(text))
	}
	if len(root.Children) == 0 {
		return nil, parseError(fmt.Errorf("no root element"), len(text))
	}
	return &Document{text: text, root: root, lines: lineStarts(text)}, nil
}

func parseError(err error, offset int) error {
	return errors.AddContext(
		errors.Wrap(err, errors.CodeValidationError, "could not parse session file"),
		errors.CtxOffset, offset,
	)
}

func lineStarts(text string) []int {
	lines := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return lines
}

func localName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
