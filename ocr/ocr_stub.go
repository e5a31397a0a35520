//go:build !ocr

// Package ocr provides optical text recognition for page images via
// the Tesseract engine.
//
// This is the stub implementation used when the "ocr" build tag is not
// set. All operations return ErrOCRNotEnabled.
//
// To enable recognition, rebuild with the "ocr" build tag:
//
//	go build -tags ocr
//
// This requires Tesseract to be installed. On macOS:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
)

// PageSegMode represents page segmentation modes for recognition.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes (matching the recognition-enabled implementation).
const (
	PSM_OSD_ONLY               PageSegMode = 0  // Orientation and script detection only
	PSM_AUTO_OSD               PageSegMode = 1  // Automatic with OSD
	PSM_AUTO_ONLY              PageSegMode = 2  // Automatic, no OSD or OCR
	PSM_AUTO                   PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN          PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5  // Single uniform block of vertically aligned text
	PSM_SINGLE_BLOCK           PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE            PageSegMode = 7  // Single text line
	PSM_SINGLE_WORD            PageSegMode = 8  // Single word
	PSM_CIRCLE_WORD            PageSegMode = 9  // Single word in a circle
	PSM_SINGLE_CHAR            PageSegMode = 10 // Single character
	PSM_SPARSE_TEXT            PageSegMode = 11 // Find as much text as possible
	PSM_SPARSE_TEXT_OSD        PageSegMode = 12 // Sparse text with OSD
	PSM_RAW_LINE               PageSegMode = 13 // Treat image as single text line
)

// Client is a stub recognition client that returns errors for all
// operations.
type Client struct{}

// New returns an error indicating recognition support is not enabled.
// To enable it, rebuild with: go build -tags ocr
func New() (*Client, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub client.
// It is safe to call on a nil client.
func (c *Client) Close() error {
	return nil
}

// SetLanguage returns an error indicating recognition support is not
// enabled.
func (c *Client) SetLanguage(lang string) error {
	return ErrOCRNotEnabled
}

// SetPageSegMode returns an error indicating recognition support is
// not enabled.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	return ErrOCRNotEnabled
}

// RecognizePage returns an error indicating recognition support is not
// enabled.
func (c *Client) RecognizePage(imageData []byte, page int) ([]model.Fragment, error) {
	return nil, ErrOCRNotEnabled
}

// RecognizePages returns an error indicating recognition support is
// not enabled.
func (c *Client) RecognizePages(images [][]byte, source model.SourceKind, dpi float64) (model.PageSet, error) {
	return model.PageSet{}, ErrOCRNotEnabled
}
