package model

import "fmt"

// PageFragments holds one page worth of raw fragments. Width and Height
// are the page dimensions in pixels at the source's native resolution;
// fragment coordinates are page-local.
type PageFragments struct {
	Number    int // 1-based
	Width     float64
	Height    float64
	Fragments []Fragment
}

// PageSet is the input contract for one rendering: ordered pages of raw
// fragments tagged with the source kind and its native resolution.
type PageSet struct {
	Source     SourceKind
	Provenance Provenance
	SourceDPI  float64
	Pages      []PageFragments
}

// FragmentCount returns the total number of fragments across all pages
func (ps PageSet) FragmentCount() int {
	n := 0
	for _, pg := range ps.Pages {
		n += len(pg.Fragments)
	}
	return n
}

// Validate checks the structural invariants of the page set: a positive
// native resolution, positive page dimensions, and strictly increasing
// page numbers starting at 1.
func (ps PageSet) Validate() error {
	if ps.SourceDPI <= 0 {
		return fmt.Errorf("%s: source resolution must be positive, got %g", ps.Source, ps.SourceDPI)
	}

	prev := 0
	for i, pg := range ps.Pages {
		if pg.Number != prev+1 {
			return fmt.Errorf("%s: page %d out of order at index %d (previous %d)", ps.Source, pg.Number, i, prev)
		}
		if pg.Width <= 0 || pg.Height <= 0 {
			return fmt.Errorf("%s: page %d has invalid dimensions %gx%g", ps.Source, pg.Number, pg.Width, pg.Height)
		}
		prev = pg.Number
	}

	return nil
}
