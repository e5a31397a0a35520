// Package mekiki provides a fluent API for reconciling the text of a
// rendered web page against the text of its paginated print counterpart.
//
// Both inputs arrive as raw positioned fragments. A run clusters each
// side into paragraphs, normalizes every coordinate into one shared
// stitched pixel space, assigns stable identifiers, pairs paragraphs
// across the two sources, and audits the outcome.
//
// Basic usage:
//
//	result, warnings, err := mekiki.NewRun(web, document).Reconcile(ctx)
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", mekiki.FormatWarnings(warnings))
//	}
//
// With options:
//
//	result, _, err := mekiki.NewRun(web, document).
//	    Profile(profile.Strict()).
//	    DocumentRenders(renders...).
//	    Reconcile(ctx)
//
// For advanced use cases, the lower-level cluster, stitch, match, and
// audit packages are also available.
package mekiki

import (
	"github.com/rs/zerolog"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/profile"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/render"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/stitch"
)

// NewRun pairs a web page set with a document page set and returns a Run
// for fluent configuration. The run starts from the relaxed profile and
// a disabled logger.
//
// Example:
//
//	result, warnings, err := mekiki.NewRun(web, document).Reconcile(ctx)
func NewRun(web, document model.PageSet) *Run {
	return &Run{
		web:      web,
		document: document,
		prof:     profile.Relaxed(),
		log:      zerolog.Nop(),
	}
}

// RenderedPages converts probed preview dimensions into the rendered
// page evidence verified during normalization and auditing.
//
// Example:
//
//	probes, err := render.ProbeDir("previews/")
//	if err != nil {
//	    // handle error
//	}
//	run := mekiki.NewRun(web, document).DocumentRenders(mekiki.RenderedPages(probes)...)
func RenderedPages(probes []render.PageRender) []stitch.RenderedPage {
	out := make([]stitch.RenderedPage, len(probes))
	for i, p := range probes {
		out[i] = stitch.RenderedPage{
			Number: p.Number,
			Width:  p.WidthPx,
			Height: p.HeightPx,
		}
	}
	return out
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	prof := mekiki.Must(profile.ByName("strict"))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustResult is a helper that wraps a call to Reconcile and panics if
// the error is non-nil. It discards warnings and returns just the value.
// It is intended for use in scripts or tests where error handling would
// be cumbersome.
//
// Example:
//
//	result := mekiki.MustResult(mekiki.NewRun(web, document).Reconcile(ctx))
func MustResult[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
