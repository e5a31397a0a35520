package model

// Paragraph is a finalized cluster of fragments. Its bounding box lives
// in the canonical stitched pixel space and is never mutated after the
// identifier has been assigned.
type Paragraph struct {
	ID         string
	Text       string
	BBox       BBox
	Page       int // 1-based page of origin
	Confidence float64
	FontSize   float64
	Source     SourceKind
	Provenance Provenance
}
