package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/jung-kurt/gofpdf"
)

// imageTypes maps image.DecodeConfig formats to gofpdf image types.
var imageTypes = map[string]string{
	"png":  "PNG",
	"jpeg": "JPG",
	"gif":  "GIF",
}

// RenderScan renders one page per scanned image. The image fills the page and
// each recognized region is drawn as fully transparent text at the region's
// position, sized to the region's height. Pages without regions are
// image-only.
func (r *PDFRenderer) RenderScan(ctx context.Context, pages []core.ScanPage) (*core.Document, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, renderingError(errors.New("no page images"))
	}
	if r.pageWidth <= 0 || r.pageHeight <= 0 {
		return nil, renderingError(fmt.Errorf("page size %.2fx%.2f is empty", r.pageWidth, r.pageHeight))
	}

	pdf := r.newDocument("", "")
	m := newPDFMeasurer(pdf)

	for i, page := range pages {
		if err := core.CheckCancelled(ctx); err != nil {
			return nil, err
		}
		tp, err := imageType(page.Image.Data)
		if err != nil {
			return nil, renderingError(fmt.Errorf("page %d: %w", i+1, err))
		}

		name := fmt.Sprintf("scan-%d", i)
		opts := gofpdf.ImageOptions{ImageType: tp}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page.Image.Data))
		if pdf.Err() {
			return nil, renderingError(fmt.Errorf("page %d: %w", i+1, pdf.Error()))
		}

		pdf.AddPage()
		pdf.ImageOptions(name, 0, 0, r.pageWidth, r.pageHeight, false, opts, 0, "")
		placed := r.overlayText(pdf, m, page.Regions)
		r.logger.Debug("rendered scan page", "page", i+1, "regions", len(page.Regions), "placed", placed)
	}

	return r.finish(pdf)
}

// overlayText draws regions as invisible text and returns how many were placed.
func (r *PDFRenderer) overlayText(pdf *gofpdf.Fpdf, m *pdfMeasurer, regions []core.RecognizedTextRegion) int {
	if len(regions) == 0 {
		return 0
	}
	_, desc := m.ascentDescent(FontFamily, "")
	lineBox := func(size float64) float64 { return m.lineBox(FontFamily, "", size) }

	pdf.SetAlpha(0, "Normal")
	defer pdf.SetAlpha(1, "Normal")

	placed := 0
	for _, region := range regions {
		text := strings.TrimSpace(cleanText(region.Text))
		if text == "" {
			continue
		}
		rect := DeviceRect(region.Box, r.pageWidth, r.pageHeight)
		if rect.Empty() {
			continue
		}
		size := FitFontSize(rect.Height, lineBox)
		pdf.SetFont(FontFamily, "", size)
		baseline := rect.Y + rect.Height + size*float64(desc)/1000
		pdf.Text(rect.X, baseline, text)
		placed++
	}
	return placed
}

// DeviceRect converts a normalized box with a bottom-left origin into page
// coordinates with a top-left origin. The box is clipped to the unit square.
func DeviceRect(box core.Rect, pageWidth, pageHeight float64) core.Rect {
	x0, x1 := clampUnit(box.X), clampUnit(box.X+box.Width)
	y0, y1 := clampUnit(box.Y), clampUnit(box.Y+box.Height)
	return core.Rect{
		X:      x0 * pageWidth,
		Y:      (1 - y1) * pageHeight,
		Width:  (x1 - x0) * pageWidth,
		Height: (y1 - y0) * pageHeight,
	}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func imageType(data []byte) (string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return "", errors.New("image has no pixels")
	}
	tp, ok := imageTypes[format]
	if !ok {
		return "", fmt.Errorf("unsupported image format %q", format)
	}
	return tp, nil
}
