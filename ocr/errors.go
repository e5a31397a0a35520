package ocr

import "errors"

// ErrOCRNotEnabled is returned when recognition is requested but
// support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("recognition support not enabled; rebuild with -tags ocr")
