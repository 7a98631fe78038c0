package patch

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"lv2fix/internal/engine/diag"
	"lv2fix/internal/engine/document"
)

// Edit replaces the digits at Location with Value.
type Edit struct {
	Location document.Range
	Value    uint32
}

// Output is the original text plus a sorted, non-overlapping list of edits.
type Output struct {
	text  string
	edits []Edit
}

// NewOutput sorts edits by start offset (stably, so equal starts keep their
// collection order) and drops every edit that begins before the end of the
// previously kept one. A dropped edit is reported only when warnOverlap is
// set. It returns the output and the number of dropped edits.
func NewOutput(text string, edits []Edit, reporter diag.Reporter, warnOverlap bool) (*Output, int) {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b Edit) int {
		return a.Location.Start - b.Location.Start
	})

	kept := sorted[:0]
	cursor, dropped := 0, 0
	for _, e := range sorted {
		if e.Location.Start < cursor {
			dropped++
			if warnOverlap {
				diag.Or(reporter).Report(diag.Diagnostic{
					Kind: diag.KindOverlappingEdit,
					Message: fmt.Sprintf("overlapping/out-of-order replacement: %s -> %d (currently at %d)",
						e.Location, e.Value, cursor),
					Offset: e.Location.Start,
				})
			}
			continue
		}
		kept = append(kept, e)
		cursor = e.Location.End
	}
	return &Output{text: text, edits: kept}, dropped
}

// Edits returns the edits that will be applied, in order.
func (o *Output) Edits() []Edit {
	return slices.Clone(o.edits)
}

// Changed reports whether the rendering differs from the input.
func (o *Output) Changed() bool {
	return len(o.edits) > 0
}

// WriteTo copies the input to w, substituting each edit's decimal value for
// its range.
func (o *Output) WriteTo(w io.Writer) (int64, error) {
	var total int64
	write := func(s string) error {
		n, err := io.WriteString(w, s)
		total += int64(n)
		return err
	}

	var num [10]byte
	pos := 0
	for _, e := range o.edits {
		if err := write(o.text[pos:e.Location.Start]); err != nil {
			return total, err
		}
		if err := write(string(strconv.AppendUint(num[:0], uint64(e.Value), 10))); err != nil {
			return total, err
		}
		pos = e.Location.End
	}
	if err := write(o.text[pos:]); err != nil {
		return total, err
	}
	return total, nil
}

func (o *Output) String() string {
	var b strings.Builder
	b.Grow(len(o.text))
	_, _ = o.WriteTo(&b)
	return b.String()
}
