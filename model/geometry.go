// Package model defines the shared data types for the reconciliation
// pipeline: fragments, paragraphs, bounding geometry, and match candidates.
package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Distance calculates the Euclidean distance to another point
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// BBox represents a bounding box in raster coordinates. X1,Y1 is the
// top-left corner, X2,Y2 the bottom-right corner; Y grows downward.
type BBox struct {
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64
}

// NewBBox creates a bounding box from corner coordinates
func NewBBox(x1, y1, x2, y2 float64) BBox {
	return BBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// Left returns the left edge X coordinate
func (b BBox) Left() float64 {
	return b.X1
}

// Right returns the right edge X coordinate
func (b BBox) Right() float64 {
	return b.X2
}

// Top returns the top edge Y coordinate
func (b BBox) Top() float64 {
	return b.Y1
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() float64 {
	return b.Y2
}

// Width returns the horizontal extent
func (b BBox) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the vertical extent
func (b BBox) Height() float64 {
	return b.Y2 - b.Y1
}

// Area returns the area of the bounding box
func (b BBox) Area() float64 {
	return b.Width() * b.Height()
}

// Center returns the center point
func (b BBox) Center() Point {
	return Point{
		X: (b.X1 + b.X2) / 2,
		Y: (b.Y1 + b.Y2) / 2,
	}
}

// Contains checks if a point is inside the bounding box
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X1 && p.X <= b.X2 &&
		p.Y >= b.Y1 && p.Y <= b.Y2
}

// Intersects checks if two bounding boxes intersect
func (b BBox) Intersects(other BBox) bool {
	return !(b.X2 < other.X1 ||
		b.X1 > other.X2 ||
		b.Y2 < other.Y1 ||
		b.Y1 > other.Y2)
}

// Intersection returns the intersection of two bounding boxes
func (b BBox) Intersection(other BBox) BBox {
	if !b.Intersects(other) {
		return BBox{}
	}

	return BBox{
		X1: math.Max(b.X1, other.X1),
		Y1: math.Max(b.Y1, other.Y1),
		X2: math.Min(b.X2, other.X2),
		Y2: math.Min(b.Y2, other.Y2),
	}
}

// Union returns the union of two bounding boxes
func (b BBox) Union(other BBox) BBox {
	return BBox{
		X1: math.Min(b.X1, other.X1),
		Y1: math.Min(b.Y1, other.Y1),
		X2: math.Max(b.X2, other.X2),
		Y2: math.Max(b.Y2, other.Y2),
	}
}

// Expand expands the bounding box by a margin on all sides
func (b BBox) Expand(margin float64) BBox {
	return BBox{
		X1: b.X1 - margin,
		Y1: b.Y1 - margin,
		X2: b.X2 + margin,
		Y2: b.Y2 + margin,
	}
}

// OverlapRatio calculates the overlap ratio with another box
// Returns value between 0 and 1
func (b BBox) OverlapRatio(other BBox) float64 {
	if !b.Intersects(other) {
		return 0
	}

	intersection := b.Intersection(other)
	minArea := math.Min(b.Area(), other.Area())

	if minArea == 0 {
		return 0
	}

	return intersection.Area() / minArea
}

// HorizontalOverlapRatio calculates how much the X extents overlap,
// relative to the narrower box. Returns value between 0 and 1.
func (b BBox) HorizontalOverlapRatio(other BBox) float64 {
	overlap := math.Min(b.X2, other.X2) - math.Max(b.X1, other.X1)
	if overlap <= 0 {
		return 0
	}

	minWidth := math.Min(b.Width(), other.Width())
	if minWidth <= 0 {
		return 0
	}

	return overlap / minWidth
}

// VerticalOverlaps checks if the Y extents of two boxes overlap,
// meaning they sit on the same line.
func (b BBox) VerticalOverlaps(other BBox) bool {
	return math.Min(b.Y2, other.Y2)-math.Max(b.Y1, other.Y1) > 0
}

// HorizontalGap returns the gap between the X extents of two boxes,
// or 0 if they overlap horizontally.
func (b BBox) HorizontalGap(other BBox) float64 {
	gap := math.Max(b.X1, other.X1) - math.Min(b.X2, other.X2)
	if gap < 0 {
		return 0
	}
	return gap
}

// VerticalGap returns the gap between the Y extents of two boxes,
// or 0 if they overlap vertically.
func (b BBox) VerticalGap(other BBox) float64 {
	gap := math.Max(b.Y1, other.Y1) - math.Min(b.Y2, other.Y2)
	if gap < 0 {
		return 0
	}
	return gap
}

// EdgeDistance returns the shortest distance between the boundaries of
// two boxes, or 0 if they intersect.
func (b BBox) EdgeDistance(other BBox) float64 {
	dx := b.HorizontalGap(other)
	dy := b.VerticalGap(other)
	return math.Sqrt(dx*dx + dy*dy)
}

// CenterDistance returns the distance between the centers of two boxes
func (b BBox) CenterDistance(other BBox) float64 {
	return b.Center().Distance(other.Center())
}

// Scale returns the box with all four coordinates multiplied by s
func (b BBox) Scale(s float64) BBox {
	return BBox{
		X1: b.X1 * s,
		Y1: b.Y1 * s,
		X2: b.X2 * s,
		Y2: b.Y2 * s,
	}
}

// OffsetY returns the box shifted vertically by dy. The X coordinates
// are left untouched.
func (b BBox) OffsetY(dy float64) BBox {
	return BBox{
		X1: b.X1,
		Y1: b.Y1 + dy,
		X2: b.X2,
		Y2: b.Y2 + dy,
	}
}

// IsEmpty returns true if the bounding box has zero area
func (b BBox) IsEmpty() bool {
	return b.Width() <= 0 || b.Height() <= 0
}

// IsValid returns true if both corner pairs are strictly ordered
func (b BBox) IsValid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}
