// Package input decodes extraction-collaborator payloads into page
// sets of raw fragments. Two formats are accepted: the canonical JSON
// wire form and hOCR recognition exports.
package input

import (
	"fmt"
	"os"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// Load detects the payload format from its content and decodes it for
// the given source.
func Load(data []byte, source model.SourceKind) (model.PageSet, []model.Warning, error) {
	switch DetectFromMagic(data) {
	case JSON:
		return DecodeJSON(data, source)
	case HOCR:
		return DecodeHOCR(data, source)
	default:
		return model.PageSet{}, nil, fmt.Errorf("%s payload format not recognized", source)
	}
}

// LoadFile reads and decodes a payload file. Content sniffing decides
// the format; the filename extension is the fallback for payloads too
// bare to sniff.
func LoadFile(path string, source model.SourceKind) (model.PageSet, []model.Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.PageSet{}, nil, fmt.Errorf("reading payload: %w", err)
	}

	format := DetectFromMagic(data)
	if format == Unknown {
		format = Detect(path)
	}

	switch format {
	case JSON:
		return DecodeJSON(data, source)
	case HOCR:
		return DecodeHOCR(data, source)
	default:
		return model.PageSet{}, nil, fmt.Errorf("%s: payload format not recognized", path)
	}
}
