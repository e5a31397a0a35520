package mekiki

import (
	"strings"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// Warning is re-exported from the model package so root API callers can
// inspect run warnings without a second import.
type Warning = model.Warning

// FormatWarnings renders a warning list as a single human-readable
// string, one warning per line.
//
// Example:
//
//	result, warnings, err := mekiki.NewRun(web, doc).Reconcile(ctx)
//	if len(warnings) > 0 {
//	    log.Println("Warnings:\n" + mekiki.FormatWarnings(warnings))
//	}
func FormatWarnings(warnings []Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
