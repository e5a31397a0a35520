// Package cluster groups raw text fragments into provisional paragraphs
// using spatial proximity and a density-based absorption pass.
package cluster

import (
	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// Config holds configuration for paragraph clustering
type Config struct {
	// MinHorizontalOverlap is the horizontal overlap ratio above which
	// stacked fragments are considered column-aligned (default: 0.6)
	MinHorizontalOverlap float64

	// LeftEdgeTolerancePx is the maximum left-edge difference in pixels
	// for stacked fragments to be considered aligned (strict: 20, relaxed: 30)
	LeftEdgeTolerancePx float64

	// FontGapFactor scales the font size into a vertical gap allowance
	// (default: 2.5)
	FontGapFactor float64

	// VerticalGapCapPx is the hard ceiling on the vertical gap allowance,
	// regardless of font size (strict: 48, relaxed: 80)
	VerticalGapCapPx float64

	// MaxFontSizeRatio is the maximum larger/smaller font size ratio for
	// two fragments to merge (default: 2.0)
	MaxFontSizeRatio float64

	// HorizontalGapPx is the maximum gap between side-by-side fragments
	// on the same line (default: 12)
	HorizontalGapPx float64

	// AreaPercentile is the bottom fraction of the page's area
	// distribution below which a provisional paragraph counts as
	// isolated (default: 0.10)
	AreaPercentile float64

	// MinTextLength is the rune count below which a provisional
	// paragraph counts as isolated (default: 3)
	MinTextLength int

	// AbsorptionRadiusPx is the maximum distance at which an isolated
	// paragraph is absorbed into its nearest neighbor (default: 200)
	AbsorptionRadiusPx float64
}

// DefaultConfig returns the relaxed calibration, suitable for sparse
// layouts such as rendered web pages
func DefaultConfig() Config {
	return Config{
		MinHorizontalOverlap: 0.6,
		LeftEdgeTolerancePx:  30.0,
		FontGapFactor:        2.5,
		VerticalGapCapPx:     80.0,
		MaxFontSizeRatio:     2.0,
		HorizontalGapPx:      12.0,
		AreaPercentile:       0.10,
		MinTextLength:        3,
		AbsorptionRadiusPx:   200.0,
	}
}

// StrictConfig returns the strict calibration, suitable for dense
// print-oriented layouts
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.LeftEdgeTolerancePx = 20.0
	cfg.VerticalGapCapPx = 48.0
	return cfg
}

// Clusterer groups fragments into provisional paragraphs
type Clusterer struct {
	config Config
}

// New creates a clusterer with default configuration
func New() *Clusterer {
	return &Clusterer{
		config: DefaultConfig(),
	}
}

// NewWithConfig creates a clusterer with custom configuration
func NewWithConfig(config Config) *Clusterer {
	return &Clusterer{
		config: config,
	}
}

// Cluster groups one page of fragments into provisional paragraphs.
// Fragments with degenerate bounding boxes are returned separately so
// the caller can report them. Zero fragments yield zero paragraphs.
func (c *Clusterer) Cluster(fragments []model.Fragment) ([]Group, []model.Fragment) {
	valid := make([]model.Fragment, 0, len(fragments))
	var dropped []model.Fragment
	for _, f := range fragments {
		if !f.BBox.IsValid() {
			dropped = append(dropped, f)
			continue
		}
		valid = append(valid, f)
	}

	if len(valid) == 0 {
		return nil, dropped
	}

	// Step 1: Proximity pass - merge-eligible pairs form connected components
	groups := c.proximityPass(valid)

	// Step 2: Density pass - absorb isolated paragraphs into neighbors
	groups = c.densityPass(groups)

	// Step 3: Sort into reading order
	sortGroupsInReadingOrder(groups)

	return groups, dropped
}

// proximityPass clusters fragments whose pairwise geometry makes them
// merge-eligible, taking the transitive closure via union-find.
func (c *Clusterer) proximityPass(fragments []model.Fragment) []Group {
	parent := make([]int, len(fragments))
	for i := range parent {
		parent[i] = i
	}

	for i := 0; i < len(fragments); i++ {
		for j := i + 1; j < len(fragments); j++ {
			if c.mergeEligible(fragments[i], fragments[j]) {
				union(parent, i, j)
			}
		}
	}

	// Collect components in first-member order
	members := make(map[int][]model.Fragment)
	var roots []int
	for i, f := range fragments {
		root := find(parent, i)
		if _, seen := members[root]; !seen {
			roots = append(roots, root)
		}
		members[root] = append(members[root], f)
	}

	groups := make([]Group, 0, len(roots))
	for _, root := range roots {
		groups = append(groups, finalizeGroup(members[root]))
	}

	return groups
}

// mergeEligible reports whether two fragments belong to the same
// provisional paragraph
func (c *Clusterer) mergeEligible(a, b model.Fragment) bool {
	fa := fontOrHeight(a)
	fb := fontOrHeight(b)
	if fontRatio(fa, fb) > c.config.MaxFontSizeRatio {
		return false
	}

	// Side-by-side on the same line
	if a.BBox.VerticalOverlaps(b.BBox) {
		return a.BBox.HorizontalGap(b.BBox) < c.config.HorizontalGapPx
	}

	// Stacked: require column alignment and a bounded vertical gap
	aligned := a.BBox.HorizontalOverlapRatio(b.BBox) > c.config.MinHorizontalOverlap ||
		absFloat64(a.BBox.X1-b.BBox.X1) < c.config.LeftEdgeTolerancePx
	if !aligned {
		return false
	}

	allowance := min(max(fa, fb)*c.config.FontGapFactor, c.config.VerticalGapCapPx)
	return a.BBox.VerticalGap(b.BBox) < allowance
}

// fontOrHeight returns the fragment's font size, falling back to its
// box height when the extractor did not report one
func fontOrHeight(f model.Fragment) float64 {
	if f.FontSize > 0 {
		return f.FontSize
	}
	return f.BBox.Height()
}

// fontRatio returns the larger/smaller ratio of two font sizes
func fontRatio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 1
	}
	if a > b {
		return a / b
	}
	return b / a
}

// find returns the root of i with path halving
func find(parent []int, i int) int {
	for parent[i] != i {
		parent[i] = parent[parent[i]]
		i = parent[i]
	}
	return i
}

// union joins the components containing i and j
func union(parent []int, i, j int) {
	ri, rj := find(parent, i), find(parent, j)
	if ri != rj {
		if ri < rj {
			parent[rj] = ri
		} else {
			parent[ri] = rj
		}
	}
}

// max returns the larger of two float64 values
func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// min returns the smaller of two float64 values
func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// absFloat64 returns the absolute value of a float64
func absFloat64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
