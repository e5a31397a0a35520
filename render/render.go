// Package render probes rendered page previews for the coordinate
// audit. Only image headers are read; pixels are never decoded.
package render

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	// Preview formats the capture collaborators export.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/tiff"
)

// PageRender records the measured pixel dimensions of one rendered
// page preview.
type PageRender struct {
	Number   int
	WidthPx  float64
	HeightPx float64
}

// ProbeSize reads an image header and returns the preview dimensions.
func ProbeSize(r io.Reader) (PageRender, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return PageRender{}, fmt.Errorf("probing preview: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return PageRender{}, fmt.Errorf("%s preview has degenerate size %dx%d", format, cfg.Width, cfg.Height)
	}
	return PageRender{WidthPx: float64(cfg.Width), HeightPx: float64(cfg.Height)}, nil
}

// ProbeFile probes a preview file on disk.
func ProbeFile(path string) (PageRender, error) {
	f, err := os.Open(path)
	if err != nil {
		return PageRender{}, fmt.Errorf("opening preview: %w", err)
	}
	defer f.Close()

	return ProbeSize(f)
}

// ProbeDir probes every preview image in a directory. Files are taken
// in name order and numbered from 1; entries without a preview
// extension are skipped, but a preview that fails to probe is an
// error.
func ProbeDir(dir string) ([]PageRender, error) {
	paths, err := ListPreviews(dir)
	if err != nil {
		return nil, err
	}

	renders := make([]PageRender, 0, len(paths))
	for i, path := range paths {
		r, err := ProbeFile(path)
		if err != nil {
			return nil, err
		}
		r.Number = i + 1
		renders = append(renders, r)
	}
	return renders, nil
}

// ListPreviews returns the preview image paths in a directory, sorted
// by filename.
func ListPreviews(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading preview directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !isPreviewName(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func isPreviewName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return true
	}
	return false
}
