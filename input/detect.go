package input

import (
	"path/filepath"
	"strings"
)

// Format represents a supported payload format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// JSON indicates the canonical fragment wire form.
	JSON
	// HOCR indicates an hOCR recognition export.
	HOCR
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case JSON:
		return "JSON"
	case HOCR:
		return "hOCR"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case JSON:
		return ".json"
	case HOCR:
		return ".hocr"
	default:
		return ""
	}
}

// Detect determines payload format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return JSON
	case ".hocr", ".html", ".htm":
		return HOCR
	default:
		return Unknown
	}
}

// DetectFromMagic inspects payload bytes to determine format. This is
// more reliable than extension-based detection. Returns Unknown if the
// content matches neither format.
func DetectFromMagic(data []byte) Format {
	// Trim leading whitespace
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	if start >= len(data) {
		return Unknown
	}
	data = data[start:]

	// JSON payloads open with an object or array
	if data[0] == '{' || data[0] == '[' {
		return JSON
	}

	if detectMarkupMagic(data) {
		return HOCR
	}

	return Unknown
}

// detectMarkupMagic checks if the data looks like an HTML document.
// hOCR exports are HTML; whether the markup actually carries
// recognition classes is the decoder's call.
func detectMarkupMagic(data []byte) bool {
	upper := strings.ToUpper(string(data[:minInt(512, len(data))]))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML") {
		return true
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
