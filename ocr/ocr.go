//go:build ocr

// Package ocr provides optical text recognition for page images via
// the Tesseract engine. It requires Tesseract to be installed on the
// system. On macOS, install via:
//
//	brew install tesseract
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr
package ocr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/isuzumi2025-cell/MEKIKI-sub002/model"
	"github.com/isuzumi2025-cell/MEKIKI-sub002/render"
)

// Client wraps Tesseract for optical recognition.
type Client struct {
	client *gosseract.Client
}

// New creates a recognition client.
// The client should be closed when no longer needed to release engine
// resources.
func New() (*Client, error) {
	return &Client{client: gosseract.NewClient()}, nil
}

// Close releases engine resources.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// SetLanguage sets the language(s) for recognition.
// Multiple languages can be specified as a "+" separated string
// (e.g. "eng+jpn"). Default is "eng" (English).
func (c *Client) SetLanguage(lang string) error {
	return c.client.SetLanguage(lang)
}

// SetPageSegMode sets the page segmentation mode.
// This affects how Tesseract analyzes the page layout.
// See gosseract.PageSegMode constants for available modes.
func (c *Client) SetPageSegMode(mode gosseract.PageSegMode) error {
	return c.client.SetPageSegMode(mode)
}

// RecognizePage recognizes one page image and returns its words as
// raw fragments with page-local pixel boxes. Engine noise (empty or
// degenerate word boxes) is skipped.
func (c *Client) RecognizePage(imageData []byte, page int) ([]model.Fragment, error) {
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return nil, fmt.Errorf("setting page %d image: %w", page, err)
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("recognizing page %d: %w", page, err)
	}

	fragments := make([]model.Fragment, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}

		box := model.NewBBox(
			float64(b.Box.Min.X), float64(b.Box.Min.Y),
			float64(b.Box.Max.X), float64(b.Box.Max.Y),
		)
		if !box.IsValid() {
			continue
		}

		fragments = append(fragments, model.Fragment{
			Text:       text,
			BBox:       box,
			Page:       page,
			Confidence: clampConfidence(b.Confidence / 100),
			FontSize:   box.Height(),
		})
	}
	return fragments, nil
}

// RecognizePages recognizes an ordered sequence of page images into a
// PageSet for the given source. Page dimensions come from the image
// headers; dpi is the capture resolution of the images.
func (c *Client) RecognizePages(images [][]byte, source model.SourceKind, dpi float64) (model.PageSet, error) {
	set := model.PageSet{
		Source:     source,
		Provenance: model.ProvenanceOptical,
		SourceDPI:  dpi,
	}

	for i, img := range images {
		number := i + 1

		size, err := render.ProbeSize(bytes.NewReader(img))
		if err != nil {
			return model.PageSet{}, fmt.Errorf("probing page %d: %w", number, err)
		}

		fragments, err := c.RecognizePage(img, number)
		if err != nil {
			return model.PageSet{}, err
		}

		set.Pages = append(set.Pages, model.PageFragments{
			Number:    number,
			Width:     size.WidthPx,
			Height:    size.HeightPx,
			Fragments: fragments,
		})
	}

	if err := set.Validate(); err != nil {
		return model.PageSet{}, err
	}
	return set, nil
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
