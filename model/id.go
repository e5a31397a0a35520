package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Identifier prefixes per source kind.
const (
	WebIDPrefix      = "W"
	DocumentIDPrefix = "P"
)

// IDPrefix returns the identifier prefix for a source kind
func IDPrefix(kind SourceKind) string {
	if kind == SourceDocument {
		return DocumentIDPrefix
	}
	return WebIDPrefix
}

// FormatID renders the sequential paragraph identifier for a source,
// zero-padded to three digits: W-001, P-042.
func FormatID(kind SourceKind, n int) string {
	return fmt.Sprintf("%s-%03d", IDPrefix(kind), n)
}

// ParseID splits a paragraph identifier into its source kind and counter
// value. It rejects unknown prefixes, missing padding, and non-positive
// counters.
func ParseID(id string) (SourceKind, int, error) {
	prefix, digits, found := strings.Cut(id, "-")
	if !found {
		return 0, 0, fmt.Errorf("identifier %q: missing separator", id)
	}

	var kind SourceKind
	switch prefix {
	case WebIDPrefix:
		kind = SourceWeb
	case DocumentIDPrefix:
		kind = SourceDocument
	default:
		return 0, 0, fmt.Errorf("identifier %q: unknown prefix %q", id, prefix)
	}

	if len(digits) < 3 {
		return 0, 0, fmt.Errorf("identifier %q: counter not zero-padded", id)
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, fmt.Errorf("identifier %q: %w", id, err)
	}
	if n < 1 {
		return 0, 0, fmt.Errorf("identifier %q: counter must start at 1", id)
	}

	return kind, n, nil
}
