package model

// Classification labels the outcome of a cross-source pairing
type Classification int

const (
	ClassUnmatched Classification = iota
	ClassMismatch
	ClassMatch
)

func (c Classification) String() string {
	switch c {
	case ClassMatch:
		return "match"
	case ClassMismatch:
		return "mismatch"
	default:
		return "unmatched"
	}
}

// MatchCandidate records the pairing decision for one paragraph. An
// unmatched paragraph keeps its own identifier and leaves the other side
// empty. Virtual marks pairs whose text agrees but whose positions make
// a real correspondence implausible.
type MatchCandidate struct {
	WebID          string
	DocumentID     string
	Similarity     float64
	Classification Classification
	Virtual        bool
}

// Assigned reports whether the candidate pairs both sources
func (mc MatchCandidate) Assigned() bool {
	return mc.WebID != "" && mc.DocumentID != ""
}
