// Package stitch normalizes clustered paragraphs into the canonical
// pixel space: one run-wide scale factor per source, pages stitched
// vertically into a single canvas, and sequential identifiers assigned
// in reading order.
package stitch

import (
	"errors"
	"fmt"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/cluster"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// ErrScaleMismatch indicates that rendered page dimensions disagree
// with the scaled native geometry beyond the configured tolerance.
var ErrScaleMismatch = errors.New("rendered dimensions disagree with scaled geometry")

// Config holds configuration for coordinate normalization
type Config struct {
	// TargetDPI is the canonical resolution all sources are scaled to
	// (default: 96)
	TargetDPI float64

	// ScaleTolerancePx is the maximum allowed disagreement between a
	// rendered page dimension and the scaled native dimension
	// (default: 2.0)
	ScaleTolerancePx float64
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		TargetDPI:        96.0,
		ScaleTolerancePx: 2.0,
	}
}

// PageGeometry describes one page of the stitched canvas
type PageGeometry struct {
	// Number is the 1-based page number
	Number int

	// OffsetY is the canonical Y coordinate of the page top
	OffsetY float64

	// Width and Height are the page dimensions in canonical pixels
	Width  float64
	Height float64

	// NativeWidth and NativeHeight are the original page dimensions
	NativeWidth  float64
	NativeHeight float64
}

// RenderedPage reports the measured pixel dimensions of a page preview
// rendered at the canonical resolution
type RenderedPage struct {
	Number int
	Width  float64
	Height float64
}

// Layout is the normalized form of one source: finalized paragraphs in
// canonical stitched space plus the page geometry that produced them
type Layout struct {
	Source     model.SourceKind
	Scale      float64
	Pages      []PageGeometry
	Paragraphs []model.Paragraph
}

// Normalizer scales, stitches, and assigns identifiers for a single
// source. It owns that source's identifier counter, so use one
// Normalizer per source and do not share it across goroutines.
type Normalizer struct {
	config Config
	next   int
}

// New creates a normalizer with default configuration
func New() *Normalizer {
	return &Normalizer{
		config: DefaultConfig(),
	}
}

// NewWithConfig creates a normalizer with custom configuration
func NewWithConfig(config Config) *Normalizer {
	return &Normalizer{
		config: config,
	}
}

// Normalize converts per-page clustered groups into finalized
// paragraphs. The groups slice must align with set.Pages. Rendered page
// dimensions, when supplied, are verified against the scaled geometry
// before any identifier is assigned; a disagreement beyond tolerance
// aborts the whole source.
func (n *Normalizer) Normalize(set model.PageSet, pages [][]cluster.Group, renders []RenderedPage) (*Layout, error) {
	if err := set.Validate(); err != nil {
		return nil, err
	}
	if len(pages) != len(set.Pages) {
		return nil, fmt.Errorf("%s: got groups for %d pages, page set has %d", set.Source, len(pages), len(set.Pages))
	}
	if n.config.TargetDPI <= 0 {
		return nil, fmt.Errorf("target resolution must be positive, got %g", n.config.TargetDPI)
	}

	// One scale factor for the whole source, never per page
	scale := n.config.TargetDPI / set.SourceDPI

	layout := &Layout{
		Source: set.Source,
		Scale:  scale,
	}

	offset := 0.0
	for i, pg := range set.Pages {
		geom := PageGeometry{
			Number:       pg.Number,
			OffsetY:      offset,
			Width:        pg.Width * scale,
			Height:       pg.Height * scale,
			NativeWidth:  pg.Width,
			NativeHeight: pg.Height,
		}

		if r := findRender(renders, pg.Number); r != nil {
			if err := n.verifyScale(set.Source, geom, *r); err != nil {
				return nil, err
			}
		}

		for _, g := range pages[i] {
			n.next++
			layout.Paragraphs = append(layout.Paragraphs, model.Paragraph{
				ID:         model.FormatID(set.Source, n.next),
				Text:       g.Text,
				BBox:       g.BBox.Scale(scale).OffsetY(offset),
				Page:       pg.Number,
				Confidence: g.Confidence,
				FontSize:   g.FontSize * scale,
				Source:     set.Source,
				Provenance: set.Provenance,
			})
		}

		layout.Pages = append(layout.Pages, geom)
		offset += geom.Height
	}

	return layout, nil
}

// verifyScale compares a rendered page against the scaled native
// geometry
func (n *Normalizer) verifyScale(source model.SourceKind, geom PageGeometry, r RenderedPage) error {
	dw := absFloat64(r.Width - geom.Width)
	dh := absFloat64(r.Height - geom.Height)
	if dw > n.config.ScaleTolerancePx || dh > n.config.ScaleTolerancePx {
		return fmt.Errorf("%s page %d: rendered %gx%g, scaled geometry %gx%g: %w",
			source, geom.Number, r.Width, r.Height, geom.Width, geom.Height, ErrScaleMismatch)
	}
	return nil
}

// findRender returns the rendered page with the given number, if any
func findRender(renders []RenderedPage, number int) *RenderedPage {
	for i := range renders {
		if renders[i].Number == number {
			return &renders[i]
		}
	}
	return nil
}

// ToPageLocal maps a canonical-space box back to page-local native
// coordinates, the inverse of the normalization transform.
func (l *Layout) ToPageLocal(b model.BBox, page int) (model.BBox, error) {
	for _, geom := range l.Pages {
		if geom.Number == page {
			return b.OffsetY(-geom.OffsetY).Scale(1 / l.Scale), nil
		}
	}
	return model.BBox{}, fmt.Errorf("%s: no page %d in layout", l.Source, page)
}

// CanvasSize returns the dimensions of the stitched canvas: the widest
// page by the summed page heights.
func (l *Layout) CanvasSize() (float64, float64) {
	if l == nil {
		return 0, 0
	}
	width := 0.0
	height := 0.0
	for _, geom := range l.Pages {
		if geom.Width > width {
			width = geom.Width
		}
		height += geom.Height
	}
	return width, height
}

// ParagraphCount returns the number of finalized paragraphs
func (l *Layout) ParagraphCount() int {
	if l == nil {
		return 0
	}
	return len(l.Paragraphs)
}

// absFloat64 returns the absolute value of a float64
func absFloat64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
