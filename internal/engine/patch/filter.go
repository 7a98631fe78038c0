package patch

import (
	"fmt"

	"github.com/gobwas/glob"
)

// URIFilter selects which plugin URIs are patched. An empty include list
// admits every URI; exclude always wins.
type URIFilter struct {
	include []glob.Glob
	exclude []glob.Glob
}

func NewURIFilter(include, exclude []string) (*URIFilter, error) {
	f := &URIFilter{}
	for _, p := range include {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", p, err)
		}
		f.include = append(f.include, g)
	}
	for _, p := range exclude {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		f.exclude = append(f.exclude, g)
	}
	return f, nil
}

// Allows is nil-safe; a nil filter admits everything.
func (f *URIFilter) Allows(uri string) bool {
	if f == nil {
		return true
	}
	for _, g := range f.exclude {
		if g.Match(uri) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, g := range f.include {
		if g.Match(uri) {
			return true
		}
	}
	return false
}
