// Package render lays out documents as paginated PDF files using gofpdf.
//
// Text mode flows a title, an author line and the article body across
// fixed-size pages. Scan mode draws one page image per page and places the
// recognized text over it as an invisible, selectable layer.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/jung-kurt/gofpdf"
)

// A4 in points, the default page geometry.
const (
	DefaultPageWidth  = 595.28
	DefaultPageHeight = 841.89
	DefaultMargin     = 40.0
)

// Text styles.
var (
	TitleStyle  = Style{Family: FontFamily, Weight: "B", Size: 24}
	AuthorStyle = Style{Family: FontFamily, Size: 16, Gray: 128}
	BodyStyle   = Style{Family: FontFamily, Size: 12}
)

const creator = "Readmate"

// PDFRenderer renders extracted articles and scanned pages as PDF documents.
// It holds no per-document state and is safe for concurrent use.
type PDFRenderer struct {
	pageWidth  float64
	pageHeight float64
	margin     float64
	logger     *slog.Logger
}

// Option configures a PDFRenderer.
type Option func(*PDFRenderer)

// WithPageSize sets the page size in points.
func WithPageSize(width, height float64) Option {
	return func(r *PDFRenderer) {
		r.pageWidth = width
		r.pageHeight = height
	}
}

// WithMargin sets the margin around the text area in points.
func WithMargin(m float64) Option {
	return func(r *PDFRenderer) {
		r.margin = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *PDFRenderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewPDFRenderer creates a PDFRenderer with A4 pages.
func NewPDFRenderer(opts ...Option) *PDFRenderer {
	r := &PDFRenderer{
		pageWidth:  DefaultPageWidth,
		pageHeight: DefaultPageHeight,
		margin:     DefaultMargin,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

// RenderText lays out the title, author and body of content across pages.
func (r *PDFRenderer) RenderText(ctx context.Context, content *core.ExtractedContent) (*core.Document, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, renderingError(errors.New("no content"))
	}
	width, height := r.contentArea()
	if width <= 0 || height <= 0 {
		return nil, renderingError(fmt.Errorf("page %.2fx%.2f with margin %.2f leaves no content area",
			r.pageWidth, r.pageHeight, r.margin))
	}

	pdf := r.newDocument(content.Title, content.Author)
	m := newPDFMeasurer(pdf)

	blocks := textBlocks(content)
	if len(blocks) == 0 {
		return nil, renderingError(errors.New("nothing to render"))
	}
	pages, err := Paginate(blocks, m, width, height)
	if err != nil {
		return nil, renderingError(err)
	}

	for _, page := range pages {
		if err := core.CheckCancelled(ctx); err != nil {
			return nil, err
		}
		pdf.AddPage()
		y := r.margin
		for _, line := range page.Lines {
			if line.Text != "" {
				r.drawLine(pdf, m, blocks[line.Block].Style, line, y)
			}
			y += line.Height
		}
	}

	doc, err := r.finish(pdf)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("rendered text document", "title", content.Title, "pages", doc.PageCount, "bytes", len(doc.Bytes))
	return doc, nil
}

// drawLine writes one line with its baseline centred in the line height.
func (r *PDFRenderer) drawLine(pdf *gofpdf.Fpdf, m *pdfMeasurer, st Style, line Line, top float64) {
	pdf.SetFont(st.Family, st.Weight, st.Size)
	pdf.SetTextColor(st.Gray, st.Gray, st.Gray)
	asc, _ := m.ascentDescent(st.Family, st.Weight)
	box := m.lineBox(st.Family, st.Weight, st.Size)
	baseline := top + (line.Height-box)/2 + st.Size*float64(asc)/1000
	pdf.Text(r.margin, baseline, line.Text)
}

// textBlocks builds the styled paragraphs of a text document: the title, the
// author, a blank line, then one block per body line.
func textBlocks(content *core.ExtractedContent) []Block {
	var blocks []Block
	for _, p := range paragraphs(content.Title) {
		if p != "" {
			blocks = append(blocks, Block{Text: p, Style: TitleStyle})
		}
	}
	if content.Author != "" {
		blocks = append(blocks, Block{Text: cleanText(content.Author), Style: AuthorStyle})
	}
	if len(blocks) > 0 {
		blocks = append(blocks, Block{Style: BodyStyle})
	}
	for _, p := range paragraphs(content.Body) {
		blocks = append(blocks, Block{Text: p, Style: BodyStyle})
	}

	// A trailing empty block has no separator to consume.
	for len(blocks) > 0 && blocks[len(blocks)-1].Text == "" {
		blocks = blocks[:len(blocks)-1]
	}
	return blocks
}

func (r *PDFRenderer) contentArea() (float64, float64) {
	return r.pageWidth - 2*r.margin, r.pageHeight - 2*r.margin
}

func (r *PDFRenderer) newDocument(title, author string) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: r.pageWidth, Ht: r.pageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(creator, true)
	registerFonts(pdf)
	if title != "" {
		pdf.SetTitle(title, true)
	}
	if author != "" {
		pdf.SetAuthor(author, true)
	}
	return pdf
}

func (r *PDFRenderer) finish(pdf *gofpdf.Fpdf) (*core.Document, error) {
	if pdf.Err() {
		return nil, renderingError(pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, renderingError(err)
	}
	if pdf.PageCount() == 0 {
		return nil, renderingError(errors.New("document has no pages"))
	}
	data, err := fixToUnicode(buf.Bytes())
	if err != nil {
		return nil, renderingError(err)
	}
	return &core.Document{Bytes: data, PageCount: pdf.PageCount()}, nil
}

func renderingError(err error) error {
	return core.NewError(core.KindRendering, core.ReasonNone, err)
}
