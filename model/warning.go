package model

import "fmt"

// Warning reports a non-fatal issue hit while decoding or reconciling
// a rendering. Warnings never stop a run; they surface in the run
// report so dropped records stay traceable.
type Warning struct {
	Stage   string
	Source  SourceKind
	Page    int // 0 when the issue is not page-scoped
	Message string
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("[%s] %s page %d: %s", w.Stage, w.Source, w.Page, w.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", w.Stage, w.Source, w.Message)
}
