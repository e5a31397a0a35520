package model

// SourceKind identifies which rendering a piece of text came from
type SourceKind int

const (
	SourceWeb SourceKind = iota
	SourceDocument
)

func (s SourceKind) String() string {
	switch s {
	case SourceWeb:
		return "web"
	case SourceDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Provenance records how a fragment's text was obtained
type Provenance int

const (
	ProvenanceTextLayer Provenance = iota
	ProvenanceOptical
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceTextLayer:
		return "text_layer"
	case ProvenanceOptical:
		return "optical"
	default:
		return "unknown"
	}
}

// Fragment represents a positioned piece of raw text as emitted by an
// extraction collaborator. Coordinates are page-local pixels at the
// source's native resolution.
type Fragment struct {
	Text       string
	BBox       BBox
	Page       int     // 1-based
	Confidence float64 // 0..1
	FontSize   float64
}
